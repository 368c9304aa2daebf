package server

import (
	"bytes"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

type pageData struct {
	CSS string
	JS  string
}

const indexCSS = `
body {
  font-family: system-ui, sans-serif;
  margin: 0 auto;
  max-width: 960px;
  padding: 1rem;
  color: #1b1f24;
}
textarea {
  width: 100%;
  min-height: 8rem;
  font-family: ui-monospace, monospace;
}
.panes {
  display: flex;
  gap: 1rem;
  margin-top: 1rem;
}
pre {
  flex: 1;
  overflow: auto;
  background: #f3f4f6;
  padding: 0.5rem;
}
img {
  border: 1px solid #d0d7de;
  background: #fff;
}
.error {
  color: #b42318;
}
`

const indexJS = `
async function decodeInput() {
  const body = document.getElementById("wkb").value.trim();
  const out = document.getElementById("out");
  const preview = document.getElementById("preview");
  out.classList.remove("error");

  const headers = { "Content-Type": "text/plain" };
  const res = await fetch("/api/decode?hex=1", { method: "POST", body, headers });
  const text = await res.text();
  if (!res.ok) {
    out.classList.add("error");
    out.textContent = text;
    preview.removeAttribute("src");
    return;
  }
  out.textContent = JSON.stringify(JSON.parse(text), null, 2);

  const img = await fetch("/api/render?hex=1", { method: "POST", body, headers });
  if (img.ok) {
    preview.src = URL.createObjectURL(await img.blob());
  }
}

document.getElementById("decode").addEventListener("click", decodeInput);
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>WKB viewer</title>
    <style>{{ .CSS }}</style>
  </head>
  <body>
    <h1>WKB viewer</h1>
    <p>Paste little-endian WKB as hex text.</p>
    <textarea id="wkb" placeholder="0101000000000000000000F03F0000000000000040"></textarea>
    <button id="decode" type="button">Decode</button>
    <div class="panes">
      <pre id="out"></pre>
      <img id="preview" alt="preview" width="256" height="256">
    </div>
    <script>{{ .JS }}</script>
  </body>
</html>
`

// buildIndex renders the viewer page and minifies its HTML, CSS and JS.
func buildIndex() ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	cssMin, err := m.String("text/css", indexCSS)
	if err != nil {
		return nil, err
	}
	jsMin, err := m.String("text/javascript", indexJS)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, pageData{CSS: cssMin, JS: jsMin}); err != nil {
		return nil, err
	}

	out, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, err
	}

	return out, nil
}
