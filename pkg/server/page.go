package server

import "html/template"

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #222; }
nav a { display: inline-block; padding: .5rem 1rem; margin-right: .25rem; border-radius: 6px 6px 0 0; background: #eee; color: #222; text-decoration: none; }
nav a.active { background: #3f51b5; color: #fff; }
.tab-content { border-top: 2px solid #3f51b5; padding: 1.5rem 0; }
.chart { max-width: 100%; height: auto; }
form { margin-top: 1rem; }
button { padding: .5rem 1rem; background: #3f51b5; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
</style>
</head>
<body>
<nav>
{{- range .Tabs}}
<a href="/tabs/{{.Index}}"{{if .Active}} class="active"{{end}}>{{.Title}}</a>
{{- end}}
</nav>
<div class="tab-content">
{{- if .IsChart}}
<img class="chart" src="/chart.png" alt="Pie chart">
{{- else}}
{{.Content}}
{{- end}}
</div>
<form method="post" action="/export">
<button type="submit">Export {{.Filename}}</button>
</form>
</body>
</html>
`))
