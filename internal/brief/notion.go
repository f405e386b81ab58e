package brief

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/patent-scout/internal/model"
	"github.com/sells-group/patent-scout/pkg/notion"
)

// Notion property names on the brief database.
const (
	propName     = "Name"
	propIndustry = "Industry"
	propPriority = "Priority"
	propLabel    = "Label"
	propRun      = "Run"
)

// NotionSink publishes one page per brief to a Notion database. A page
// whose title already exists is updated in place and gets the new brief
// appended.
type NotionSink struct {
	Client     notion.Client
	DatabaseID string
}

// Name implements Sink.
func (NotionSink) Name() string { return "notion" }

// Deliver implements Sink.
func (n NotionSink) Deliver(ctx context.Context, run *model.Run, briefs []model.Brief) error {
	if n.Client == nil || n.DatabaseID == "" {
		return eris.New("brief: notion sink not configured")
	}
	for _, b := range briefs {
		if err := n.publish(ctx, run, b); err != nil {
			return eris.Wrapf(err, "brief: publish %q", b.Title)
		}
	}
	return nil
}

func (n NotionSink) publish(ctx context.Context, run *model.Run, b model.Brief) error {
	title := b.Title
	if len(b.Path) > 3 {
		title = b.Title + " (" + b.Path[:len(b.Path)-3] + ")"
	}
	props := notionapi.Properties{
		propName:     notion.Title(title),
		propIndustry: notion.Text(b.Industry),
		propPriority: notion.Number(b.Priority),
		propLabel:    notion.Select(b.PriorityLabel),
	}
	if run != nil {
		props[propRun] = notion.Text(run.ID)
	}
	chunks := notion.Chunk(notion.MarkdownBlocks(b.Text))

	existing, err := notion.FindByTitle(ctx, n.Client, n.DatabaseID, propName, title)
	if err != nil {
		return err
	}

	var pageID string
	if existing != nil {
		pageID = string(existing.ID)
		if _, err := n.Client.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{Properties: props}); err != nil {
			return err
		}
	} else {
		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(n.DatabaseID),
			},
			Properties: props,
		}
		if len(chunks) > 0 {
			req.Children = chunks[0]
			chunks = chunks[1:]
		}
		page, err := n.Client.CreatePage(ctx, req)
		if err != nil {
			return err
		}
		pageID = string(page.ID)
	}

	for _, c := range chunks {
		if err := n.Client.AppendBlocks(ctx, pageID, c); err != nil {
			return err
		}
	}
	return nil
}
