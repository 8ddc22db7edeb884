package relance

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// GenericCompletionSentence is rendered instead of the item list when nothing specific is missing
const GenericCompletionSentence = "Please complete your exchange file."

// folderIDPlaceholder is substituted in Composer.BaseURL with the escaped folder id
const folderIDPlaceholder = "{id}"

var reminderTemplate = template.Must(template.New("reminder").Parse(`<html>
<body>
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<p>{{if .Name}}Hello {{.Name}},{{else}}Hello,{{end}}</p>
{{- if .Items}}
<p>Your exchange file #{{.FolderID}} is still incomplete. The following items are missing:</p>
<ul>
{{- range .Items}}
<li>{{.}}</li>
{{- end}}
</ul>
{{- else}}
<p>{{.Generic}}</p>
{{- end}}
<p><a href="{{.Link}}">Complete my file</a></p>
<p>The International Relations Office</p>
</div>
</body>
</html>
`))

// Message is a rendered reminder
type Message struct {
	Subject       string
	HTMLBody      string
	PlainTextBody string
}

// Composer renders reminder emails. BaseURL is the link to a folder's page;
// it may contain "{id}", otherwise the folder id is appended.
type Composer struct {
	BaseURL string
}

// NewComposer creates a composer linking to baseURL
func NewComposer(baseURL string) *Composer {
	return &Composer{BaseURL: baseURL}
}

// Compose builds the reminder for a folder. Same inputs always render the same bytes.
func (c *Composer) Compose(folderID uint, displayName string, missingItems []string) Message {
	data := struct {
		FolderID uint
		Name     string
		Items    []string
		Generic  string
		Link     string
	}{
		FolderID: folderID,
		Name:     strings.TrimSpace(displayName),
		Items:    missingItems,
		Generic:  GenericCompletionSentence,
		Link:     c.link(folderID),
	}

	var buf bytes.Buffer
	// the template is parsed at init and only receives strings, execution cannot fail
	_ = reminderTemplate.Execute(&buf, data)
	body := buf.String()

	return Message{
		Subject:       fmt.Sprintf("Exchange file #%d: action required", folderID),
		HTMLBody:      body,
		PlainTextBody: StripTags(body),
	}
}

func (c *Composer) link(folderID uint) string {
	id := url.PathEscape(strconv.FormatUint(uint64(folderID), 10))
	if strings.Contains(c.BaseURL, folderIDPlaceholder) {
		return strings.ReplaceAll(c.BaseURL, folderIDPlaceholder, id)
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + id
}

// StripTags returns the text content of an HTML document, one line per block element
func StripTags(doc string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or malformed input, keep what was extracted so far
			break
		}
		switch tt {
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "li":
				if tt == html.StartTagToken {
					b.WriteString("\n- ")
				}
			case "p", "div", "ul", "ol", "br", "h1", "h2", "h3", "tr":
				b.WriteString("\n")
			}
		}
	}

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	text := strings.Join(lines, "\n")
	if text == "" && strings.TrimSpace(doc) != "" {
		// markup only, still never hand back an empty body
		return strings.TrimSpace(doc)
	}
	return text
}
