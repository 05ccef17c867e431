package runtime

import (
	"context"
	"strings"

	"github.com/aretw0/voyage/internal/presentation/report"
	"github.com/aretw0/voyage/pkg/domain"
)

// Render calculates the presentation for a state without advancing it.
// The boolean reports whether the session is waiting for input.
func (e *Engine) Render(ctx context.Context, state *domain.SessionState) ([]domain.ActionRequest, bool, error) {
	if state == nil {
		return nil, false, domain.ErrSessionNotFound
	}

	var actions []domain.ActionRequest
	if state.Notice != "" {
		actions = append(actions, systemMessage(state.Notice))
	}

	if state.Terminated() {
		if state.LastError != "" {
			actions = append(actions, systemMessage("Planning stopped: "+state.LastError))
		} else {
			actions = append(actions, systemMessage("Session ended."))
		}
		return actions, false, nil
	}

	if state.Status != domain.StatusWaitingForInput {
		return actions, false, nil
	}

	switch state.Pending {
	case domain.InputFields:
		req := domain.InputRequest{Kind: domain.InputFields, Type: domain.InputText, Questions: state.Questions}
		if len(state.Questions) > 0 {
			actions = append(actions, content(report.Questions(state.Questions)))
			req.Prompt = state.Questions[0]
		} else {
			req.Prompt = "What would you like to change? (e.g. budget=150000 INR, destination=Paris)"
		}
		actions = append(actions, inputRequest(req))

	case domain.InputApproval:
		actions = append(actions, content(report.Shortlist(*state.Shortlist)))
		actions = append(actions, inputRequest(domain.InputRequest{
			Kind:    domain.InputApproval,
			Type:    domain.InputConfirm,
			Prompt:  "Approve this shortlist? (approve / reject: <feedback>)",
			Options: []string{"approve", "reject"},
		}))

	case domain.InputBudgetAlert:
		actions = append(actions, content(report.Logistics(*state.Logistics)+"\n"+report.Audit(*state.Audit)))
		actions = append(actions, systemMessage(report.BudgetAlert(*state.Audit)))
		actions = append(actions, inputRequest(domain.InputRequest{
			Kind:    domain.InputBudgetAlert,
			Type:    domain.InputChoice,
			Prompt:  "Proceed with this plan anyway, or adjust the request? (proceed / adjust)",
			Options: []string{string(domain.BudgetProceed), string(domain.BudgetAdjust)},
		}))

	case domain.InputNextStep:
		var sb strings.Builder
		sb.WriteString(report.Itinerary(*state.Itinerary))
		if state.Logistics != nil {
			sb.WriteString("\n" + report.Logistics(*state.Logistics))
		}
		if state.Audit != nil {
			sb.WriteString("\n" + report.Audit(*state.Audit))
		}
		actions = append(actions, content(sb.String()))

		options := make([]string, len(domain.Choices))
		for i, c := range domain.Choices {
			options[i] = string(c)
		}
		actions = append(actions, inputRequest(domain.InputRequest{
			Kind:    domain.InputNextStep,
			Type:    domain.InputChoice,
			Prompt:  "refine <instructions>, update <field=value ...>, or quit?",
			Options: options,
		}))
	}
	return actions, true, nil
}

func content(markdown string) domain.ActionRequest {
	return domain.ActionRequest{Type: domain.ActionRenderContent, Payload: markdown}
}

func systemMessage(msg string) domain.ActionRequest {
	return domain.ActionRequest{Type: domain.ActionSystemMessage, Payload: msg}
}

func inputRequest(req domain.InputRequest) domain.ActionRequest {
	return domain.ActionRequest{Type: domain.ActionRequestInput, Payload: req}
}
