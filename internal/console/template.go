package console

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/bitcraft-companion/internal/bitcraft"
	"github.com/pixil98/bitcraft-companion/internal/display"
)

// templateFuncs provides utility functions for templates.
var templateFuncs = func() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["label"] = func(v fmt.Stringer) string { return display.Label(v.String()) }
	funcs["coords"] = func(c bitcraft.Coordinates) string { return fmt.Sprintf("(%d, %d)", c.X, c.Y) }
	return funcs
}()

// views holds one named template per screen.
var views = template.Must(template.New("views").Funcs(templateFuncs).Parse(viewTemplates))

// viewData is what every view template receives.
type viewData struct {
	Value any
	Self  string
	Title string
}

func renderView(name string, data viewData) (string, error) {
	var buf bytes.Buffer
	if err := views.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

const viewTemplates = `
{{- define "resource" -}}
{{ .Name }} ({{ label .Type }}) {{ .Quantity }}/{{ .MaxQuantity }} at {{ coords .Coordinates }}
{{- end -}}

{{- define "claim" -}}
{{ .Name }} [{{ label .Status }}] at {{ coords .Coordinates }}, owned by {{ .Owner }}
{{- range .Resources }}
    {{ template "resource" . }}
{{- end }}
{{- end -}}

{{- define "worldmap" -}}
{{ with .Value -}}
{{ .Name }} ({{ .Size.Width }}x{{ .Size.Height }})
Claims ({{ len .Claims }}):
{{- range .Claims }}
  {{ .Name }} [{{ label .Status }}] at {{ coords .Coordinates }}, owned by {{ .Owner }}
{{- else }}
  none
{{- end }}
Resources ({{ len .Resources }}):
{{- range .Resources }}
  {{ template "resource" . }}
{{- else }}
  none
{{- end }}
{{- end }}
{{- end -}}

{{- define "claims" -}}
Your claims:
{{- range .Value }}
  {{ template "claim" . }}
{{- else }}
  You hold no claims.
{{- end }}
{{- end -}}

{{- define "claimdetail" -}}
{{ template "claim" .Value }}
{{- end -}}

{{- define "empire" -}}
{{ .Name }}: {{ len .Members }} member(s), {{ len .Claims }} claim(s)
{{- if .Members }}
    Members: {{ range $i, $m := .Members }}{{ if $i }}, {{ end }}{{ $m.Username }}{{ end }}
{{- end }}
{{- range .Claims }}
    {{ .Name }} [{{ label .Status }}] at {{ coords .Coordinates }}
{{- end }}
{{- end -}}

{{- define "empires" -}}
Your empires:
{{- range .Value }}
  {{ template "empire" . }}
{{- else }}
  You belong to no empire.
{{- end }}
{{- end -}}

{{- define "empiredetail" -}}
{{ template "empire" .Value }}
{{- end -}}

{{- define "resources" -}}
Resources nearby:
{{- range .Value }}
  {{ template "resource" . }}
{{- else }}
  none
{{- end }}
{{- end -}}

{{- define "status" -}}
{{ with .Value -}}
Server is {{ .Status }} with {{ .Players }} player(s) online.
Version {{ default "unknown" .Version }}, up {{ default "unknown" .Uptime }}.
{{- end }}
{{- end -}}

{{- define "players" -}}
{{ .Title }}:
{{- range .Value }}
  {{ .Username }}{{ if .Online }} (online){{ end }}
{{- else }}
  nobody
{{- end }}
{{- end -}}

{{- define "chat" -}}
{{ .Title }}:
{{- range .Value }}
  [{{ dateInZone "01-02 15:04" .Timestamp "UTC" }}] {{ if eq .Sender $.Self }}you{{ else }}{{ .Sender }}{{ end }}: {{ .Message }}
{{- else }}
  No messages.
{{- end }}
{{- end -}}

{{- define "whoami" -}}
{{ with .Value -}}
{{ .Username }} <{{ .Email }}>
Id: {{ .Id }}
Claims: {{ if .Claims }}{{ join ", " .Claims }}{{ else }}none{{ end }}
Empires: {{ if .Empires }}{{ join ", " .Empires }}{{ else }}none{{ end }}
{{- end }}
{{- end -}}

{{- define "help" -}}
Available commands:
{{- range .Value }}
  {{ .Category }}: {{ join ", " .Names }}
{{- end }}
Type 'help <command>' for usage.
{{- end -}}
`
