package notion

import (
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"
)

// maxRichText is the Notion limit on characters in one rich text object.
const maxRichText = 2000

// RichText splits s into text objects no longer than the Notion limit.
func RichText(s string) []notionapi.RichText {
	var out []notionapi.RichText
	for len(s) > 0 {
		cut := len(s)
		if utf8.RuneCountInString(s) > maxRichText {
			cut = 0
			for i := 0; i < maxRichText; i++ {
				_, size := utf8.DecodeRuneInString(s[cut:])
				cut += size
			}
		}
		out = append(out, notionapi.RichText{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s[:cut]},
		})
		s = s[cut:]
	}
	return out
}

// Title builds a title property.
func Title(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{Type: notionapi.PropertyTypeTitle, Title: RichText(s)}
}

// Text builds a rich text property.
func Text(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{Type: notionapi.PropertyTypeRichText, RichText: RichText(s)}
}

// Number builds a number property.
func Number(f float64) notionapi.NumberProperty {
	return notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: f}
}

// Select builds a select property.
func Select(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{Type: notionapi.PropertyTypeSelect, Select: notionapi.Option{Name: name}}
}

// MarkdownBlocks converts markdown into Notion blocks. Headings become
// heading blocks, "- " and "* " lines become bullets, and other non-blank
// lines become paragraphs.
func MarkdownBlocks(md string) []notionapi.Block {
	var blocks []notionapi.Block
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "### "):
			blocks = append(blocks, &notionapi.Heading3Block{
				BasicBlock: basic(notionapi.BlockTypeHeading3),
				Heading3:   notionapi.Heading{RichText: RichText(trimmed[4:])},
			})
		case strings.HasPrefix(trimmed, "## "):
			blocks = append(blocks, &notionapi.Heading2Block{
				BasicBlock: basic(notionapi.BlockTypeHeading2),
				Heading2:   notionapi.Heading{RichText: RichText(trimmed[3:])},
			})
		case strings.HasPrefix(trimmed, "# "):
			blocks = append(blocks, &notionapi.Heading1Block{
				BasicBlock: basic(notionapi.BlockTypeHeading1),
				Heading1:   notionapi.Heading{RichText: RichText(trimmed[2:])},
			})
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			blocks = append(blocks, &notionapi.BulletedListItemBlock{
				BasicBlock:       basic(notionapi.BlockTypeBulletedListItem),
				BulletedListItem: notionapi.ListItem{RichText: RichText(trimmed[2:])},
			})
		default:
			blocks = append(blocks, &notionapi.ParagraphBlock{
				BasicBlock: basic(notionapi.BlockTypeParagraph),
				Paragraph:  notionapi.Paragraph{RichText: RichText(trimmed)},
			})
		}
	}
	return blocks
}

func basic(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: t}
}

// Chunk splits blocks into request-sized batches.
func Chunk(blocks []notionapi.Block) [][]notionapi.Block {
	var out [][]notionapi.Block
	for len(blocks) > MaxChildrenPerRequest {
		out = append(out, blocks[:MaxChildrenPerRequest])
		blocks = blocks[MaxChildrenPerRequest:]
	}
	if len(blocks) > 0 {
		out = append(out, blocks)
	}
	return out
}
