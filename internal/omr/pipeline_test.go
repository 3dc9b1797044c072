package omr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodeSheet(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestPipeline_ScoreSyntheticSheet(t *testing.T) {
	sheet := drawSheet(map[int][]int{
		1:   {1},    // Python Q1: b
		25:  {0, 2}, // EDA Q25: a,c
		100: {3},    // Statistics Q100: d
	})
	key := AnswerSet{
		"Python":     {"Q1": "b", "Q2": "a"},
		"EDA":        {"Q25": "c, a"},
		"SQL":        {"Q41": "a"},
		"Statistics": {"Q100": "d"},
	}

	for _, part := range []Partition{PartitionByGap, PartitionByCount} {
		t.Run(part.String(), func(t *testing.T) {
			p, err := NewPipeline(DefaultLayout(), WithPartition(part), WithStrict(true))
			if err != nil {
				t.Fatalf("NewPipeline: %v", err)
			}
			res, err := p.Score(context.Background(), sheet, key)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}

			d := res.Detection.Diagnostics
			if d.Bubbles != 400 || d.Placed != 400 {
				t.Errorf("bubbles/placed: got %d/%d, want 400/400", d.Bubbles, d.Placed)
			}
			if d.Filled != 4 {
				t.Errorf("Filled: got %d, want 4", d.Filled)
			}

			answers := res.Detection.Answers
			checks := map[string]map[string]string{
				"Python":     {"Q1": "b", "Q2": ""},
				"EDA":        {"Q25": "a,c"},
				"Statistics": {"Q100": "d"},
			}
			for section, qs := range checks {
				for q, want := range qs {
					if got := answers[section][q]; got != want {
						t.Errorf("%s %s: got %q, want %q", section, q, got, want)
					}
				}
			}

			want := map[string]int{"Python": 1, "EDA": 1, "SQL": 0, "Power BI": 0, "Statistics": 1, "Total": 3}
			for k, v := range want {
				if res.Scores[k] != v {
					t.Errorf("score %s: got %d, want %d", k, res.Scores[k], v)
				}
			}
		})
	}
}

func TestPipeline_ScoreBytes(t *testing.T) {
	p, err := NewPipeline(DefaultLayout())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	data := encodeSheet(t, drawSheet(map[int][]int{42: {2}}))

	res, err := p.ScoreBytes(context.Background(), data, AnswerSet{"SQL": {"Q42": "c"}})
	if err != nil {
		t.Fatalf("ScoreBytes: %v", err)
	}
	if res.Report.Total != 1 {
		t.Errorf("Total: got %d, want 1", res.Report.Total)
	}
}

func TestPipeline_ScoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.png")
	if err := os.WriteFile(path, encodeSheet(t, drawSheet(nil)), 0o644); err != nil {
		t.Fatal(err)
	}
	p, _ := NewPipeline(DefaultLayout())

	res, err := p.ScoreFile(context.Background(), path, AnswerSet{"Python": {"Q1": "a"}})
	if err != nil {
		t.Fatalf("ScoreFile: %v", err)
	}
	if res.Report.Total != 0 {
		t.Errorf("blank sheet scored %d", res.Report.Total)
	}

	if _, err := p.ScoreFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPipeline_UnreadableImage(t *testing.T) {
	p, _ := NewPipeline(DefaultLayout())
	for _, data := range [][]byte{nil, []byte("not an image")} {
		if _, err := p.ScoreBytes(context.Background(), data, nil); !errors.Is(err, ErrUnreadableImage) {
			t.Errorf("got %v, want ErrUnreadableImage", err)
		}
	}
}

func TestPipeline_GridNotFound(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	// Ten bubble-like shapes is well short of the 50 needed.
	for i := 0; i < 10; i++ {
		drawBubble(img, 40+i*35, 200, false)
	}
	p, _ := NewPipeline(DefaultLayout())

	_, err := p.Score(context.Background(), img, AnswerSet{})
	if !errors.Is(err, ErrGridNotFound) {
		t.Errorf("got %v, want ErrGridNotFound", err)
	}
}

func TestPipeline_StrictMisaligned(t *testing.T) {
	sheet := drawSheet(nil)
	// Paint over one bubble so 399 remain.
	cx, cy := sheetOrigin+2*columnPitch+optionPitch, sheetOrigin+7*rowPitch
	for y := cy - 12; y <= cy+12; y++ {
		for x := cx - 12; x <= cx+12; x++ {
			sheet.Set(x, y, color.White)
		}
	}

	strict, _ := NewPipeline(DefaultLayout(), WithStrict(true))
	if _, err := strict.Detect(context.Background(), sheet); !errors.Is(err, ErrMisalignedGrid) {
		t.Errorf("strict: got %v, want ErrMisalignedGrid", err)
	}

	lenient, _ := NewPipeline(DefaultLayout())
	det, err := lenient.Detect(context.Background(), sheet)
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if !det.Diagnostics.Misaligned() || len(det.Diagnostics.Warnings) == 0 {
		t.Error("lenient detection should report the misalignment")
	}
	if det.Diagnostics.Placed != 399 {
		t.Errorf("Placed: got %d, want 399", det.Diagnostics.Placed)
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _ := NewPipeline(DefaultLayout())

	if _, err := p.Score(ctx, drawSheet(nil), AnswerSet{}); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestDetection_Annotate(t *testing.T) {
	p, _ := NewPipeline(DefaultLayout())
	det, err := p.Detect(context.Background(), drawSheet(map[int][]int{1: {0}}))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	out := det.Annotate()
	if out.Bounds() != det.Canonical.Bounds() {
		t.Errorf("annotated bounds %v, want %v", out.Bounds(), det.Canonical.Bounds())
	}
	if bytes.Equal(out.Pix, det.Canonical.Pix) {
		t.Error("annotation drew nothing")
	}
}

func TestSectionColors(t *testing.T) {
	colors := sectionColors(5)
	if len(colors) != 5 {
		t.Fatalf("got %d colours, want 5", len(colors))
	}
	seen := make(map[color.RGBA]bool)
	for _, c := range colors {
		rgba := color.RGBAModel.Convert(c).(color.RGBA)
		if seen[rgba] {
			t.Errorf("duplicate section colour %v", rgba)
		}
		seen[rgba] = true
	}
}
