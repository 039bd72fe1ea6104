package console

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}} · Backoffice</title></head>
<body>
{{- if .Identity}}
<header>
  <span>{{.Identity.FullName}} ({{.Identity.Role}})</span>
  {{- if .Event}} <span>Event: {{if .Event.Name}}{{.Event.Name}}{{else}}#{{.Event.ID}}{{end}}</span>{{end}}
  <form method="post" action="/logout"><button type="submit">Sign out</button></form>
</header>
{{- end}}
{{- if .Toast}}
<p role="alert" class="toast">{{.Toast}}</p>
{{- end}}
<h1>{{.Title}}</h1>
{{- if .Login}}
<form method="post" action="/login">
  <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
  <label>Password <input type="password" name="password" required></label>
  <label><input type="checkbox" name="remember"> Remember me</label>
  <button type="submit">Sign in</button>
</form>
{{- end}}
{{- if .Stats}}
<dl>
{{- range .Stats}}
  <dt>{{.Label}}</dt><dd>{{.Value}}</dd>
{{- end}}
</dl>
{{- end}}
{{- if .Columns}}
<table>
  <thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>
  {{- range .Rows}}
    <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
  {{- else}}
    <tr><td colspan="{{len .Columns}}">No results</td></tr>
  {{- end}}
  </tbody>
</table>
{{- if .Pagination}}
<p>Page {{.Pagination.Page}} of {{.Pagination.TotalPages}} ({{.Pagination.Total}} total)</p>
{{- end}}
{{- end}}
</body>
</html>
`))
