package web

import "html/template"

type pageData struct {
	Title      string
	Content    string
	SocketPath string
}

// The preview document is shown in a sandboxed frame and replaced wholesale
// on every push.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>html, body { margin: 0; height: 100%; } iframe { border: 0; width: 100%; height: 100%; }</style>
</head>
<body>
<iframe id="preview" sandbox srcdoc="{{.Content}}"></iframe>
<script>
(function () {
  var frame = document.getElementById("preview");
  var scheme = location.protocol === "https:" ? "wss:" : "ws:";
  var socket = new WebSocket(scheme + "//" + location.host + {{.SocketPath}});
  socket.onmessage = function (e) { frame.srcdoc = e.data; };
})();
</script>
</body>
</html>
`))
