package events

import (
	"testing"
	"time"
)

func TestMessageTemplateEngine_Render(t *testing.T) {
	engine := NewMessageTemplateEngine()

	tests := []struct {
		name     string
		reason   EventReason
		data     EventData
		expected string
	}{
		{
			name:     "reconciled with duration",
			reason:   ReasonApplicationReconciled,
			data:     EventData{Name: "foo", Action: "Create", Image: "v2", Duration: 1500 * time.Millisecond},
			expected: "Create of application foo applied image v2 in 1.5s",
		},
		{
			name:     "reconciled without duration",
			reason:   ReasonApplicationReconciled,
			data:     EventData{Name: "foo", Action: "Update", Image: "v3"},
			expected: "Update of application foo applied image v3",
		},
		{
			name:     "partially reconciled",
			reason:   ReasonApplicationPartiallyReconciled,
			data:     EventData{Name: "foo", Action: "Create", Failed: "Ingress", Error: "webhook denied"},
			expected: "Create of application foo partially applied, failed: Ingress: webhook denied",
		},
		{
			name:     "failed without error",
			reason:   ReasonApplicationReconcileFailed,
			data:     EventData{Name: "foo", Action: "Update"},
			expected: "Update of application foo failed",
		},
		{
			name:     "unknown reason",
			reason:   EventReason("Other"),
			data:     EventData{Name: "foo", Namespace: "ns-foo"},
			expected: "Event: Other for ns-foo/foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.Render(tt.reason, tt.data); got != tt.expected {
				t.Errorf("Render() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMessageTemplateEngine_SetTemplate(t *testing.T) {
	engine := NewMessageTemplateEngine()
	engine.SetTemplate(ReasonApplicationReconciled, "{{.Name}} is live in {{.Namespace}}")

	tmpl, ok := engine.GetTemplate(ReasonApplicationReconciled)
	if !ok || tmpl != "{{.Name}} is live in {{.Namespace}}" {
		t.Fatalf("unexpected template %q (ok=%v)", tmpl, ok)
	}

	got := engine.Render(ReasonApplicationReconciled, EventData{Name: "foo", Namespace: "ns-foo"})
	if got != "foo is live in ns-foo" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestGetEventType(t *testing.T) {
	if getEventType(ReasonApplicationReconciled) != EventTypeNormal {
		t.Error("reconciled should be Normal")
	}
	if getEventType(ReasonApplicationPartiallyReconciled) != EventTypeWarning {
		t.Error("partially reconciled should be Warning")
	}
	if getEventType(ReasonApplicationReconcileFailed) != EventTypeWarning {
		t.Error("failed should be Warning")
	}
}
