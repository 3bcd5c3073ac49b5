package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"appdeployer/internal/manifest"
	"appdeployer/internal/reconciler"
	strutil "appdeployer/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// FormatStatuses writes one row per application followed by the summary line.
func (f *TableFormatter) FormatStatuses(statuses []reconciler.ReconcileStatus, summary reconciler.MetricsSummary) error {
	if len(statuses) == 0 {
		f.printf("%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint("No applications reconciled yet"))
	} else {
		t := f.createTable()
		t.AppendHeader(header("NAME", "STATE", "ACTION", "IMAGE", "RECONCILES", "LAST RECONCILE", "ERROR"))
		for _, s := range statuses {
			t.AppendRow(table.Row{
				text.FgHiCyan.Sprint(s.Name),
				colorState(s.State),
				string(s.LastAction),
				s.Image,
				s.ReconcileCount,
				formatTime(s.LastReconcileTime),
				strutil.SingleLine(s.LastError, strutil.DefaultCellMaxLen),
			})
		}
		t.Render()
	}

	if f.options.Quiet {
		return nil
	}
	f.printf("\n%s %d reconciles, %d succeeded, %d partial, %d failed, %d interrupted, %d dropped\n",
		text.FgHiBlue.Sprint("Summary:"),
		summary.TotalReconciles, summary.TotalSuccesses, summary.TotalPartial,
		summary.TotalFailures, summary.TotalInterrupted, summary.TotalDropped)
	f.printf("%s %d queued, %d in flight\n",
		text.FgHiBlue.Sprint("Workers:"), summary.QueueDepth, summary.InFlight)
	return nil
}

// FormatStatus writes the application fields and its per-resource results.
func (f *TableFormatter) FormatStatus(status reconciler.ReconcileStatus) error {
	t := f.createTable()
	t.AppendHeader(header("KEY", "VALUE"))
	t.AppendRows([]table.Row{
		{text.FgHiCyan.Sprint("Name"), status.Name},
		{text.FgHiCyan.Sprint("State"), colorState(status.State)},
		{text.FgHiCyan.Sprint("Last action"), string(status.LastAction)},
		{text.FgHiCyan.Sprint("Image"), status.Image},
		{text.FgHiCyan.Sprint("Delivery"), status.LastDeliveryID},
		{text.FgHiCyan.Sprint("Last reconcile"), formatTime(status.LastReconcileTime)},
		{text.FgHiCyan.Sprint("Reconciles"), status.ReconcileCount},
		{text.FgHiCyan.Sprint("Failures"), status.FailureCount},
	})
	if status.LastError != "" {
		t.AppendRow(table.Row{text.FgHiCyan.Sprint("Error"), status.LastError})
	}
	t.Render()

	if len(status.Resources) == 0 {
		return nil
	}

	f.printf("\n")
	rt := f.createTable()
	rt.AppendHeader(header("KIND", "NAME", "OPERATION", "ATTEMPTS", "RESULT"))
	for _, r := range status.Resources {
		result := text.FgGreen.Sprint("ok")
		if r.Error != "" {
			result = text.FgRed.Sprint(strutil.SingleLine(r.Error, strutil.DefaultCellMaxLen))
		}
		rt.AppendRow(table.Row{string(r.Kind), r.Name, string(r.Operation), r.Attempts, result})
	}
	rt.Render()
	return nil
}

// FormatManifests writes one row per desired resource in apply order.
func (f *TableFormatter) FormatManifests(set manifest.DesiredSet) error {
	t := f.createTable()
	t.AppendHeader(header("KIND", "NAMESPACE", "NAME", "DETAIL"))

	t.AppendRow(table.Row{"Namespace", "", set.Namespace.Name, ""})

	d := set.Deployment
	image := ""
	if len(d.Spec.Template.Spec.Containers) > 0 {
		image = d.Spec.Template.Spec.Containers[0].Image
	}
	t.AppendRow(table.Row{"Deployment", d.Namespace, d.Name, image})

	s := set.Service
	ports := make([]string, 0, len(s.Spec.Ports))
	for _, p := range s.Spec.Ports {
		ports = append(ports, fmt.Sprintf("%d->%s", p.Port, p.TargetPort.String()))
	}
	t.AppendRow(table.Row{"Service", s.Namespace, s.Name, strings.Join(ports, ",")})

	in := set.Ingress
	rules := make([]string, 0)
	for _, r := range in.Spec.Rules {
		if r.HTTP == nil {
			continue
		}
		for _, p := range r.HTTP.Paths {
			rules = append(rules, r.Host+p.Path)
		}
	}
	t.AppendRow(table.Row{"Ingress", in.Namespace, in.Name, strings.Join(rules, ",")})

	t.Render()
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.Out)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) printf(format string, args ...interface{}) {
	fmt.Fprintf(f.options.Out, format, args...)
}

func header(names ...string) table.Row {
	row := make(table.Row, 0, len(names))
	for _, n := range names {
		row = append(row, text.FgHiCyan.Sprint(n))
	}
	return row
}

func colorState(s reconciler.ReconcileState) string {
	switch s {
	case reconciler.StateSynced, reconciler.StateDeleted:
		return text.FgGreen.Sprint(s)
	case reconciler.StatePartiallySynced, reconciler.StateInterrupted:
		return text.FgYellow.Sprint(s)
	case reconciler.StateFailed:
		return text.FgRed.Sprint(s)
	default:
		return text.FgHiBlack.Sprint(s)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
