package dashboard

import (
	"bytes"
	"embed"
)

//go:generate curl -sSfL -o assets/echarts.min.js https://cdn.jsdelivr.net/npm/echarts@5.5.1/dist/echarts.min.js

//go:embed assets
var assets embed.FS

const runtimeFile = "assets/echarts.min.js"

// EmbeddedRuntime returns the ECharts runtime compiled into the binary, or
// nil when the build has none.
func EmbeddedRuntime() []byte {
	data, err := assets.ReadFile(runtimeFile)
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

// inlineScript places script inside the page head, ahead of the chart
// scripts in the body.
func inlineScript(html, script []byte) []byte {
	var tag bytes.Buffer
	tag.WriteString("<script type=\"text/javascript\">\n")
	tag.Write(bytes.ReplaceAll(script, []byte("</script"), []byte(`<\/script`)))
	tag.WriteString("\n</script>\n</head>")
	return bytes.Replace(html, []byte("</head>"), tag.Bytes(), 1)
}
