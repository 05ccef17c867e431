package domain

// ActionRequest represents output the engine asks the host to present.
type ActionRequest struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Standard Action Types
const (
	// ActionRenderContent requests the host to display content to the user.
	// Payload: string (markdown)
	ActionRenderContent = "RENDER_CONTENT"

	// ActionRequestInput requests the host to collect input from the user.
	// Payload: InputRequest
	ActionRequestInput = "REQUEST_INPUT"

	// ActionSystemMessage is a meta-message such as a notice or an alert.
	// Payload: string
	ActionSystemMessage = "SYSTEM_MESSAGE"
)

// InputType defines the shape of the answer requested.
type InputType string

const (
	InputText    InputType = "text"
	InputConfirm InputType = "confirm"
	InputChoice  InputType = "choice"
)

// InputRequest describes the input a waiting session needs.
type InputRequest struct {
	Kind      InputKind `json:"kind"`
	Type      InputType `json:"type"`
	Prompt    string    `json:"prompt"`
	Options   []string  `json:"options,omitempty"`
	Questions []string  `json:"questions,omitempty"`
}
