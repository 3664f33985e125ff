package htmlutil

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	if node.Type == html.ElementNode && skipElement(node) {
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

func skipElement(node *html.Node) bool {
	switch node.Data {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}

// FindTextNode returns the first text node in document order whose
// contents contain substr. Like GetText it does not look inside script, style,
// noscript or template elements, labels are only searched in rendered text.
func FindTextNode(root *html.Node, substr string) (*html.Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.Type == html.TextNode {
		if strings.Contains(root.Data, substr) {
			return root, true
		}
		return nil, false
	}
	if root.Type == html.ElementNode && skipElement(root) {
		return nil, false
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		found, ok := FindTextNode(child, substr)
		if ok {
			return found, true
		}
	}
	return nil, false
}
