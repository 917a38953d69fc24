package pipeline

import (
	"bytes"
	"strings"

	"github.com/matzehuels/lanechart/pkg/chart"
	chartio "github.com/matzehuels/lanechart/pkg/io"
)

// Parse decodes a chart document. An empty or generic format sniffs the content:
// documents starting with '{' are JSON, anything else YAML. Media types such
// as "application/yaml" are accepted as formats.
func Parse(data []byte, format string) (*chart.Chart, error) {
	switch name := mediaFormat(format); name {
	case "", "text/plain", "application/octet-stream":
		return chartio.Decode(data, sniff(data))
	default:
		f, err := chartio.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		return chartio.Decode(data, f)
	}
}

// mediaFormat maps a Content-Type to a format name.
func mediaFormat(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	switch {
	case strings.HasSuffix(s, "/json"), strings.HasSuffix(s, "+json"):
		return "json"
	case strings.HasSuffix(s, "/yaml"), strings.HasSuffix(s, "/x-yaml"), strings.HasSuffix(s, "+yaml"):
		return "yaml"
	}
	return s
}

func sniff(data []byte) chartio.Format {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return chartio.FormatJSON
	}
	return chartio.FormatYAML
}
