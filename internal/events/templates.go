package events

import (
	"fmt"
	"strings"
)

// MessageTemplateEngine provides dynamic message generation for events.
type MessageTemplateEngine struct {
	templates map[EventReason]string
}

// NewMessageTemplateEngine creates a new message template engine with default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	engine := &MessageTemplateEngine{
		templates: make(map[EventReason]string),
	}
	engine.loadDefaultTemplates()
	return engine
}

func (e *MessageTemplateEngine) loadDefaultTemplates() {
	e.templates[ReasonApplicationReconciled] = "{{.Action}} of application {{.Name}} applied image {{.Image}}{{if .Duration}} in {{.Duration}}{{end}}"
	e.templates[ReasonApplicationPartiallyReconciled] = "{{.Action}} of application {{.Name}} partially applied, failed: {{.Failed}}{{if .Error}}: {{.Error}}{{end}}"
	e.templates[ReasonApplicationReconcileFailed] = "{{.Action}} of application {{.Name}} failed{{if .Error}}: {{.Error}}{{end}}"
}

// Render generates a message for the given event reason and data.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	template, exists := e.templates[reason]
	if !exists {
		// Fallback for unknown event reasons
		return fmt.Sprintf("Event: %s for %s/%s", string(reason), data.Namespace, data.Name)
	}

	return e.renderTemplate(template, data)
}

// SetTemplate allows customizing the message template for a specific event reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, template string) {
	e.templates[reason] = template
}

// GetTemplate returns the template for a specific event reason.
func (e *MessageTemplateEngine) GetTemplate(reason EventReason) (string, bool) {
	template, exists := e.templates[reason]
	return template, exists
}

// renderTemplate performs simple variable substitution with EventData.
func (e *MessageTemplateEngine) renderTemplate(template string, data EventData) string {
	result := template

	result = strings.ReplaceAll(result, "{{.Name}}", data.Name)
	result = strings.ReplaceAll(result, "{{.Namespace}}", data.Namespace)
	result = strings.ReplaceAll(result, "{{.Action}}", data.Action)
	result = strings.ReplaceAll(result, "{{.Image}}", data.Image)
	result = strings.ReplaceAll(result, "{{.Failed}}", data.Failed)
	result = strings.ReplaceAll(result, "{{.Error}}", data.Error)

	if strings.Contains(result, "{{.Duration}}") {
		if data.Duration > 0 {
			result = strings.ReplaceAll(result, "{{.Duration}}", data.Duration.String())
		} else {
			result = strings.ReplaceAll(result, "{{.Duration}}", "")
		}
	}

	result = e.renderConditional(result, "{{if .Error}}", "{{end}}", data.Error != "")
	result = e.renderConditional(result, "{{if .Duration}}", "{{end}}", data.Duration > 0)

	return result
}

// renderConditional handles a single {{if .Field}}content{{end}} block.
func (e *MessageTemplateEngine) renderConditional(template, startMarker, endMarker string, condition bool) string {
	startIndex := strings.Index(template, startMarker)
	if startIndex == -1 {
		return template
	}

	endIndex := strings.Index(template[startIndex:], endMarker)
	if endIndex == -1 {
		return template
	}
	endIndex += startIndex

	before := template[:startIndex]
	after := template[endIndex+len(endMarker):]
	if !condition {
		return before + after
	}
	return before + template[startIndex+len(startMarker):endIndex] + after
}
