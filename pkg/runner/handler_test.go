package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader(""), &out,
		WithTextHandlerRenderer(func(s string) (string, error) { return strings.ToUpper(s), nil }),
		WithTextHandlerSystemRenderer(func(s string) (string, error) { return "!! " + s, nil }),
	)

	needsInput, err := h.Output(context.Background(), []domain.ActionRequest{
		{Type: domain.ActionRenderContent, Payload: "shortlist"},
		{Type: domain.ActionSystemMessage, Payload: "over budget"},
		{Type: domain.ActionRequestInput, Payload: domain.InputRequest{Prompt: "Approve?"}},
	})
	require.NoError(t, err)
	assert.True(t, needsInput)
	assert.Equal(t, "SHORTLIST\n\n!! over budget\nApprove?\n", out.String())
}

func TestTextHandler_InputSanitizesAndRetries(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "16")
	var out bytes.Buffer
	h := NewTextHandler(strings.NewReader("this line is far too long\n  app\x1b[0mrove \n"), &out)

	got, err := h.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "approve", got)
	assert.Contains(t, out.String(), "Please try again")
}

func TestTextHandler_InputHonoursContext(t *testing.T) {
	h := NewTextHandler(strings.NewReader(""), &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewJSONHandler(strings.NewReader("\"reject: less walking\"\nrefine\n"), &out)
	ctx := context.Background()

	needsInput, err := h.Output(ctx, []domain.ActionRequest{
		{Type: domain.ActionRequestInput, Payload: domain.InputRequest{Kind: domain.InputApproval, Prompt: "Approve?"}},
	})
	require.NoError(t, err)
	assert.True(t, needsInput)
	assert.JSONEq(t, `[{"type":"REQUEST_INPUT","payload":{"kind":"approval","type":"","prompt":"Approve?"}}]`, out.String())

	got, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reject: less walking", got)

	got, err = h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refine", got)

	out.Reset()
	require.NoError(t, h.SystemOutput(ctx, "saved"))
	assert.JSONEq(t, `[{"type":"SYSTEM_MESSAGE","payload":"saved"}]`, out.String())
}
