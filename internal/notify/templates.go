package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/playbookTV/leadscan-sub000/internal/models"
)

// LeadHTML renders the HTML body of a lead email.
func LeadHTML(lead *models.Lead) string {
	var rows strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&rows, "            <p><span class=\"label\">%s:</span> %s</p>\n", label, html.EscapeString(value))
	}
	row("Platform", lead.Platform)
	row("Author", lead.Author)
	row("Score", fmt.Sprintf("%d/10 (quick %d)", lead.FinalScore, lead.QuickScore))
	row("Keywords", strings.Join(lead.Keywords, ", "))
	if a := lead.AIAnalysis; a != nil {
		row("Project", a.ProjectType)
		row("Budget", derefString(a.Budget))
		row("Timeline", derefString(a.Timeline))
	}

	content := fmt.Sprintf(`
        <p>%s</p>
        <div class="info-box">
%s        </div>
        <p class="value">%s</p>
        <p><a href="%s" class="button">Open post</a></p>`,
		html.EscapeString(summary(lead)),
		rows.String(),
		html.EscapeString(excerpt(lead.Text, excerptLength)),
		html.EscapeString(lead.URL))

	return baseHTML(Subject(lead), content)
}

// LeadText renders the plain-text body of a lead email.
func LeadText(lead *models.Lead) string {
	var b strings.Builder
	b.WriteString(Subject(lead))
	b.WriteString("\n\n")
	if s := summary(lead); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Score: %d/10 (quick %d)\n", lead.FinalScore, lead.QuickScore)
	if lead.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", lead.Author)
	}
	if len(lead.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(lead.Keywords, ", "))
	}
	b.WriteString("\n")
	b.WriteString(excerpt(lead.Text, excerptLength))
	b.WriteString("\n\n")
	b.WriteString(lead.URL)
	b.WriteString("\n")
	return b.String()
}

func baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #059669; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 20px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; border-radius: 0 0 8px 8px; }
        .button { display: inline-block; background: #059669; color: white; padding: 10px 20px; text-decoration: none; border-radius: 6px; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .value { color: #6b7280; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), content)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
