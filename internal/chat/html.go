// Package chat formats chat output as HTML cards and collects it for delivery.
package chat

import (
	"fmt"
	"html"
	"strings"
)

const (
	boxStyle      = "background-color: #eeeeee; color: #000000; padding:2px; border:1px solid black; border-radius: 5px; text-align: left; font-weight: normal; font-style: normal; min-height: 80px"
	titleStyle    = "display: inline-block; border-bottom: 2px solid black; margin-bottom: 2px;"
	noticeStyle   = "background-color: #EEEE99; color: #000000; padding:0px; border:1px solid black; border-radius: 5px; padding: 5px"
	paragraphTmpl = "<p style='padding: 0px; margin: 0px;'>%s</p>"
)

// Message renders a boxed message with an optional title. body is trusted HTML.
func Message(title, body string) string {
	var b strings.Builder
	b.WriteString("<div style='" + boxStyle + "'>")
	if title != "" {
		fmt.Fprintf(&b, "<h3 style='%s'>%s</h3><br/>", titleStyle, html.EscapeString(title))
	}
	b.WriteString(body)
	b.WriteString("</div>")
	return b.String()
}

// TokenCard renders a boxed message headed by a token's name and image.
func TokenCard(name, imgSrc, body string) string {
	var b strings.Builder
	b.WriteString("<div style='" + boxStyle + "'>")
	if imgSrc != "" {
		fmt.Fprintf(&b, "<img style='float:right' width='64' alt='%s' src='%s'>", html.EscapeString(name), html.EscapeString(imgSrc))
	}
	fmt.Fprintf(&b, "<h3 style='%s'>%s</h3><br/>", titleStyle, html.EscapeString(name))
	b.WriteString(body)
	b.WriteString("</div>")
	return b.String()
}

// Notice renders a short yellow announcement.
func Notice(text string) string {
	return "<div style='" + noticeStyle + "'>" + html.EscapeString(text) + "</div>"
}

// Field renders a bold label followed by a value and a line break.
func Field(label, value string) string {
	return "<b>" + html.EscapeString(label) + ":</b> " + html.EscapeString(value) + "<br/>"
}

// Paragraph wraps trusted HTML in an unstyled paragraph.
func Paragraph(inner string) string {
	return fmt.Sprintf(paragraphTmpl, inner)
}
