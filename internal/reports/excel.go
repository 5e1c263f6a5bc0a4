package reports

import (
	"fmt"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/xuri/excelize/v2"
)

const (
	headerFill     = "#0891b2"
	statsColWidth  = 20
	workerColWidth = 25
)

// sheet wraps one excelize worksheet with the styles every report uses.
type sheet struct {
	f      *excelize.File
	name   string
	row    int
	title  int
	bold   int
	center int
	border int
	header int
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	s := &sheet{f: f, name: name, row: 1}

	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	styles := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}, Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&s.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&s.center, &excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}}},
		{&s.border, &excelize.Style{Border: thin}},
		{&s.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
			Border:    thin,
		}},
	}
	for _, st := range styles {
		id, err := f.NewStyle(st.style)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create style: %w", err)
		}
		*st.dst = id
	}
	return s, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// banner writes a merged A:E line on the current row.
func (s *sheet) banner(text string, style int) error {
	first, last := cell(1, s.row), cell(5, s.row)
	if err := s.f.MergeCell(s.name, first, last); err != nil {
		return err
	}
	if err := s.f.SetCellValue(s.name, first, text); err != nil {
		return err
	}
	if err := s.f.SetCellStyle(s.name, first, last, style); err != nil {
		return err
	}
	s.row++
	return nil
}

func (s *sheet) caption(text string) error {
	ref := cell(1, s.row)
	if err := s.f.SetCellValue(s.name, ref, text); err != nil {
		return err
	}
	if err := s.f.SetCellStyle(s.name, ref, ref, s.bold); err != nil {
		return err
	}
	s.row++
	return nil
}

// pairs writes label/value rows with borders in columns A and B.
func (s *sheet) pairs(rows [][]string) error {
	for _, row := range rows {
		if err := s.line([]any{row[0], row[1]}, s.border); err != nil {
			return err
		}
	}
	return nil
}

func (s *sheet) line(values []any, style int) error {
	for i, v := range values {
		ref := cell(i+1, s.row)
		if err := s.f.SetCellValue(s.name, ref, v); err != nil {
			return err
		}
		if err := s.f.SetCellStyle(s.name, ref, ref, style); err != nil {
			return err
		}
	}
	s.row++
	return nil
}

func (s *sheet) headerRow(labels []string) error {
	values := make([]any, len(labels))
	for i, l := range labels {
		values[i] = l
	}
	return s.line(values, s.header)
}

func (s *sheet) skip() { s.row++ }

func (s *sheet) finish(width float64, props *excelize.DocProperties) ([]byte, error) {
	defer s.f.Close()
	if err := s.f.SetColWidth(s.name, "A", "E", width); err != nil {
		return nil, err
	}
	if err := s.f.SetDocProps(props); err != nil {
		return nil, err
	}
	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) statisticsXLSX(res *statistics.Result, now time.Time) ([]byte, error) {
	stamp := now.Format(displayLayout)
	s, err := newSheet(sheetStatistics)
	if err != nil {
		return nil, err
	}
	steps := []func() error{
		func() error { return s.banner(titleStatistics, s.title) },
		func() error {
			if res.DateRange == "" {
				s.skip()
				return nil
			}
			return s.banner(labelPeriod+res.DateRange, s.center)
		},
		func() error { return s.banner(labelGeneratedAt+stamp, s.center) },
		func() error { s.skip(); return s.caption(upper(sectionSummary)) },
		func() error { return s.pairs(resultSummary(res)) },
		func() error {
			if len(res.TopicStats) == 0 {
				return nil
			}
			s.skip()
			if err := s.caption(upper(sectionTopics)); err != nil {
				return err
			}
			if err := s.headerRow(topicHeaders); err != nil {
				return err
			}
			for _, ts := range res.TopicStats {
				if err := s.line([]any{ts.Title, ts.Count, ts.Completed, ts.Pending, percentText(ts.Percentage)}, s.border); err != nil {
					return err
				}
			}
			return nil
		},
		func() error {
			s.skip()
			if err := s.caption(upper(sectionUsers)); err != nil {
				return err
			}
			return s.pairs([][]string{
				{labelUsers, fmt.Sprint(res.TotalUsers)},
				{labelAdmins, fmt.Sprint(res.TotalAdmins)},
			})
		},
	}
	if err := run(s, steps); err != nil {
		return nil, err
	}
	return s.finish(statsColWidth, docProps(titleStatistics, now))
}

func (r *Renderer) workerXLSX(rep *statistics.WorkerReport, now time.Time) ([]byte, error) {
	stamp := now.Format(displayLayout)
	s, err := newSheet(sheetWorker)
	if err != nil {
		return nil, err
	}
	title := workerTitlePrefix + workerName(rep.Worker)
	steps := []func() error{
		func() error { return s.banner(title, s.title) },
		func() error { return s.banner(labelGeneratedAt+stamp, s.center) },
		func() error { s.skip(); return s.caption(upper(sectionWorkerInfo)) },
		func() error { return s.pairs(r.workerInfo(rep, false)) },
		func() error { s.skip(); return s.caption(upper(sectionWorkerStats)) },
		func() error { return s.pairs(workerSummary(rep.Summary)) },
		func() error {
			if len(rep.Requests) == 0 {
				return nil
			}
			s.skip()
			if err := s.caption(upper(sectionRequestList)); err != nil {
				return err
			}
			rows := r.requestRows(rep.Requests, r.cfg.XLSXCommentLimit)
			if err := s.headerRow(rows[0]); err != nil {
				return err
			}
			for _, row := range rows[1:] {
				if err := s.line([]any{row[0], row[1], row[2], row[3], row[4]}, s.border); err != nil {
					return err
				}
			}
			return nil
		},
	}
	if err := run(s, steps); err != nil {
		return nil, err
	}
	return s.finish(workerColWidth, docProps(title, now))
}

func run(s *sheet, steps []func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			s.f.Close()
			return err
		}
	}
	return nil
}

func docProps(title string, now time.Time) *excelize.DocProperties {
	stamp := now.UTC().Format("2006-01-02T15:04:05Z")
	return &excelize.DocProperties{
		Title:    title,
		Creator:  "nazorat",
		Created:  stamp,
		Modified: stamp,
	}
}
