package view

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const pageStyle = `body{font-family:system-ui,-apple-system,Segoe UI,Roboto,sans-serif}
.container{max-width:900px;margin:24px auto}
header{display:flex;justify-content:space-between;align-items:center}
main{display:grid;grid-template-columns:1fr 2fr;gap:16px}
.parties ul{list-style:none;padding:0}
.parties button{cursor:pointer;padding:6px 10px;margin:2px 0}
.parties li.selected button{font-weight:bold;outline:2px solid #333}
.error{padding:8px;margin:8px 0;border:1px solid #cc0000;background:#ffecec;color:#990000}
.prompt{font-style:italic}
dt{font-weight:bold}
dd{margin:0 0 8px 0}`

// liveScript swaps #app for every fragment pushed over the live websocket.
const liveScript = `(function(){
var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+%q);
ws.onmessage=function(e){var a=document.getElementById(%q);if(a){a.outerHTML=e.data;}};
})();`

// PageOptions configures the document shell around the #app container.
type PageOptions struct {
	Title string
	Lang  string
	// LivePath is the websocket path; empty disables live updates.
	LivePath string
}

// WritePage writes a full HTML document embedding appHTML (a rendered #app container).
func WritePage(w io.Writer, appHTML string, opts PageOptions) error {
	if opts.Title == "" {
		opts.Title = "Party Planner"
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := el(atom.Html, attr("lang", opts.Lang))
	head := el(atom.Head)
	appendAll(head,
		el(atom.Meta, attr("charset", "utf-8")),
		el(atom.Meta, attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")),
	)
	title := el(atom.Title)
	title.AppendChild(text(opts.Title))
	style := el(atom.Style)
	style.AppendChild(text(pageStyle))
	appendAll(head, title, style)

	body := el(atom.Body)
	nodes, err := html.ParseFragment(strings.NewReader(appHTML), body)
	if err != nil {
		return fmt.Errorf("parse app fragment: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	if opts.LivePath != "" {
		script := el(atom.Script)
		script.AppendChild(text(fmt.Sprintf(liveScript, opts.LivePath, ContainerID)))
		body.AppendChild(script)
	}

	appendAll(root, head, body)
	doc.AppendChild(root)
	return html.Render(w, doc)
}
