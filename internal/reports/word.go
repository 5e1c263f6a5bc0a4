package reports

import (
	"context"
	"fmt"
	"math"

	"github.com/angelmondragon/nazorat-backend/internal/reports/docx"
	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
)

func (r *Renderer) statisticsDocx(res *statistics.Result, stamp string) *docx.Document {
	doc := docx.New()
	doc.Heading(titleStatistics, 0, docx.AlignCenter)
	if res.DateRange != "" {
		doc.Paragraph(docx.AlignCenter, docx.Run{Text: labelPeriod + res.DateRange})
	}
	doc.Paragraph(docx.AlignCenter, docx.Run{Text: labelGeneratedAt + stamp})
	doc.Blank()

	doc.Heading(sectionSummary, 1, docx.AlignLeft)
	doc.Table(resultSummary(res), docx.TableOptions{})
	doc.Blank()

	if len(res.TopicStats) > 0 {
		doc.Heading(sectionTopics, 1, docx.AlignLeft)
		rows := [][]string{topicHeaders}
		for _, ts := range res.TopicStats {
			rows = append(rows, []string{
				ts.Title,
				fmt.Sprint(ts.Count),
				fmt.Sprint(ts.Completed),
				fmt.Sprint(ts.Pending),
				percentText(ts.Percentage),
			})
		}
		doc.Table(rows, docx.TableOptions{BoldHeader: true})
		doc.Blank()
	}

	doc.Heading(sectionUsers, 1, docx.AlignLeft)
	doc.Table([][]string{
		{labelUsers, fmt.Sprint(res.TotalUsers)},
		{labelAdmins, fmt.Sprint(res.TotalAdmins)},
	}, docx.TableOptions{})
	return doc
}

func (r *Renderer) workerDocx(rep *statistics.WorkerReport, stamp string) *docx.Document {
	title := workerTitlePrefix + workerName(rep.Worker)
	doc := docx.New()
	doc.Heading(title, 0, docx.AlignCenter)
	if rep.DateRange != "" {
		doc.Paragraph(docx.AlignCenter, docx.Run{Text: labelPeriod + rep.DateRange})
	}
	doc.Paragraph(docx.AlignCenter, docx.Run{Text: labelGeneratedAt + stamp})
	doc.Blank()

	doc.Heading(sectionWorkerInfo, 1, docx.AlignLeft)
	doc.Table(r.workerInfo(rep, true), docx.TableOptions{})
	doc.Blank()

	doc.Heading(sectionWorkerStats, 1, docx.AlignLeft)
	doc.Table(workerSummary(rep.Summary), docx.TableOptions{})
	doc.Blank()

	if len(rep.Requests) > 0 {
		doc.Heading(sectionRequestList, 1, docx.AlignLeft)
		shown := rep.Requests
		if limit := r.cfg.WorkerRowCap; limit > 0 && len(shown) > limit {
			shown = shown[:limit]
		}
		doc.Table(r.requestRows(shown, r.cfg.WordCommentLimit), docx.TableOptions{BoldHeader: true})
		if extra := len(rep.Requests) - len(shown); extra > 0 {
			doc.Text(fmt.Sprintf(moreRowsFormat, extra))
		}
	}
	return doc
}

func (r *Renderer) protocolDocx(ctx context.Context, d *requests.Detail, mediaPath string, stamp string) *docx.Document {
	regNumber := valueNotAvailable
	if d.RegNumber != nil && *d.RegNumber != "" {
		regNumber = *d.RegNumber
	}

	doc := docx.New()
	doc.Heading(titleProtocol, 0, docx.AlignCenter)
	doc.Paragraph(docx.AlignCenter, docx.Run{Text: "№ " + regNumber, Bold: true, SizePt: 14})
	if d.DocumentNumber != nil && *d.DocumentNumber != "" {
		doc.Paragraph(docx.AlignCenter, docx.Run{Text: labelDocNumber + *d.DocumentNumber, SizePt: 11})
	}
	doc.Blank()

	coords := valueNone
	if d.Coordinates != nil {
		coords = d.Coordinates.String()
	}
	readAt := valueUnread
	if d.AdminReadAt != nil {
		readAt = r.display(*d.AdminReadAt)
	}
	doc.Table([][]string{
		{labelTopic, d.TopicTitle},
		{labelSubmitter, d.SubmitterName()},
		{labelCreatedAt, r.display(d.CreatedAt)},
		{labelStatus, d.StatusLabel},
		{labelCoordinates, coords},
		{labelReadAt, readAt},
	}, docx.TableOptions{BoldFirstColumn: true})
	doc.Blank()

	doc.Heading(sectionComment, 1, docx.AlignLeft)
	if d.Comment != "" {
		doc.Text(d.Comment)
	} else {
		doc.Text(valueNoComment)
	}

	if mediaPath != "" && fileExists(mediaPath) {
		doc.Blank()
		if isEmbeddable(mediaPath) {
			doc.Heading(sectionImage, 1, docx.AlignLeft)
			r.embed(ctx, doc, mediaPath)
		} else {
			doc.Heading(sectionAttachment, 1, docx.AlignLeft)
			doc.Text(labelFileName + baseName(mediaPath))
		}
	}

	if d.Reply != nil && *d.Reply != "" {
		doc.Blank()
		doc.Heading(sectionReply, 1, docx.AlignLeft)
		doc.Text(*d.Reply)
		if d.RepliedAt != nil {
			doc.Paragraph(docx.AlignLeft, docx.Run{Text: labelRepliedAt + r.display(*d.RepliedAt), Italic: true})
		}
	}

	doc.Blank()
	doc.Blank()
	doc.Paragraph(docx.AlignRight, docx.Run{Text: labelGeneratedAt + stamp})
	return doc
}

// embed places the image or, when it cannot be converted, a visible note.
func (r *Renderer) embed(ctx context.Context, doc *docx.Document, path string) {
	img, err := loadImage(path, r.cfg.ImageMaxPixels, r.cfg.JPEGQuality)
	if err == nil {
		width := int64(math.Round(r.cfg.ImageWidthInches * docx.EMUPerInch))
		height := width * int64(img.height) / int64(img.width)
		err = doc.Picture(img.jpeg, width, height, docx.AlignCenter)
	}
	if err != nil {
		r.metrics.IncEmbedFailure()
		r.logg.WarnErr(r.logg.WithField(ctx, "media_path", path), "reports.image_embed_failed",
			pkgerrors.Wrap(pkgerrors.CodeRender, err, "embed image"))
		doc.Text(embedFailedPrefix + err.Error())
	}
}

func (r *Renderer) workerInfo(rep *statistics.WorkerReport, withRegistered bool) [][]string {
	fullName := ""
	if rep.Worker.FullName != nil {
		fullName = *rep.Worker.FullName
	}
	rows := [][]string{
		{labelUsername, rep.Worker.Username},
		{labelFullName, fullName},
		{labelRole, roleLabel(rep.Worker.Role)},
	}
	if withRegistered {
		rows = append(rows, []string{labelRegistered, r.display(rep.Worker.CreatedAt)})
	}
	return rows
}

func (r *Renderer) requestRows(rows []requests.Detail, commentLimit int) [][]string {
	out := [][]string{requestHeaders}
	for _, d := range rows {
		reg := ""
		if d.RegNumber != nil {
			reg = *d.RegNumber
		}
		out = append(out, []string{reg, d.TopicTitle, r.display(d.CreatedAt), d.StatusLabel, Truncate(d.Comment, commentLimit)})
	}
	return out
}
