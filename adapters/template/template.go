package exporttemplate

// DefaultTemplate prints a landscape A4 page. Margins match the native PDF
// renderer so both engines produce the same frame.
const DefaultTemplate = `<!DOCTYPE html>
<html{% if lang %} lang="{{ lang }}"{% endif %} dir="{{ dir }}">
<head>
<meta charset="utf-8">
<title>{{ title }}</title>
<style>
@page { size: A4 landscape; margin: 100pt 50pt 50pt 50pt; }
body { font-family: {{ font_family|safe }}; font-size: 10pt; color: #222; margin: 0; }
.institution { direction: ltr; display: flex; align-items: center; justify-content: space-between; border-bottom: 1pt solid #3c3c3c; padding-bottom: 6pt; margin-bottom: 12pt; }
.institution .logo { width: 60pt; height: 60pt; object-fit: contain; }
.institution .placeholder { display: inline-flex; align-items: center; justify-content: center; border: 1pt solid #787878; font-size: 8pt; }
h1 { font-size: 16pt; margin: 0 0 10pt; text-align: {% if dir == "rtl" %}right{% else %}left{% endif %}; }
table { width: 100%; border-collapse: collapse; table-layout: fixed; }
th { background: #ebebeb; border-bottom: 0.8pt solid #3c3c3c; }
th, td { padding: 4pt; text-align: start; vertical-align: top; word-wrap: break-word; }
tbody tr + tr td { border-top: 0.4pt solid #d2d2d2; }
.generated { color: #777; font-size: 8pt; margin: 0 0 8pt; }
.no-data { text-align: center; font-size: 12pt; margin-top: 20pt; }
</style>
</head>
<body>
<header class="institution">
<span class="foreign">{{ header.foreign }}</span>
{% if header.logo %}<img class="logo" src="{{ header.logo }}" alt="">{% else %}<span class="logo placeholder">{{ header.placeholder }}</span>{% endif %}
<span class="local">{{ header.local }}</span>
</header>
<h1>{{ title }}</h1>
<p class="generated">{{ generated }}</p>
{% if rows %}<table>
<thead><tr>{% for column in columns %}<th style="width: {{ column.percent|floatformat:2 }}%">{{ column.label }}</th>{% endfor %}</tr></thead>
<tbody>
{% for row in rows %}<tr>{% for cell in row %}<td>{{ cell }}</td>{% endfor %}</tr>
{% endfor %}</tbody>
</table>{% else %}<p class="no-data">{{ no_data }}</p>{% endif %}
</body>
</html>
`
