package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/gramlens/gramlens/internal/stats"
	"github.com/gramlens/gramlens/internal/types"
)

// Renderer writes PNG charts beneath a base directory, one subdirectory per
// report goal. Charts are independent: one failed render is logged and
// skipped, the rest still land on disk.
type Renderer struct {
	base string
}

func New(base string) *Renderer {
	return &Renderer{base: base}
}

type job struct {
	sub    string
	name   string
	render func(io.Writer) error
}

// RenderEngagement draws the timing, content and product charts for an
// engagement run. It returns the paths written and how many charts failed.
func (r *Renderer) RenderEngagement(res *stats.Result) (rendered []string, failed int) {
	jobs := []job{
		{"timing", "daily_engagement.png", dailyLine(res)},
		{"timing", "hourly_engagement.png", hourlyBars(res)},
		{"content", "top_posts.png", topPostBars(res)},
		{"content", "post_type_comparison.png", categoryBars("Average Comments by Post Type", res.PostTypes)},
		{"content", "post_type_share.png", postTypePie(res)},
		{"products", "product_performance.png", categoryBars("Average Comments by Product", res.Products)},
		{"products", "scent_performance.png", categoryBars("Average Comments by Scent", res.Scents)},
	}
	return r.run(jobs)
}

// RenderReputation draws the sentiment charts for a scored sample.
func (r *Renderer) RenderReputation(sum *types.ReputationSummary) (rendered []string, failed int) {
	jobs := []job{
		{"reputation", "sentiment_distribution.png", sentimentBars(sum)},
		{"reputation", "sentiment_by_post_type.png", typeSentimentStack(sum.ByPostType)},
	}
	return r.run(jobs)
}

func (r *Renderer) run(jobs []job) (rendered []string, failed int) {
	for _, j := range jobs {
		path, err := r.write(j.sub, j.name, j.render)
		if err != nil {
			logrus.Warnf("skipping chart %s/%s: %v", j.sub, j.name, err)
			failed++
			continue
		}
		logrus.Debugf("wrote chart %s", path)
		rendered = append(rendered, path)
	}
	return rendered, failed
}

func (r *Renderer) write(sub, name string, render func(io.Writer) error) (string, error) {
	dir := filepath.Join(r.base, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := render(f); err != nil {
		os.Remove(path) // don't leave a truncated image behind
		return "", err
	}
	return path, nil
}

func dailyLine(res *stats.Result) func(io.Writer) error {
	return func(w io.Writer) error {
		var xs, ys []float64
		for day := 1; day <= 31; day++ {
			if res.Daily[day] > 0 {
				xs = append(xs, float64(day))
				ys = append(ys, float64(res.Daily[day]))
			}
		}
		if len(xs) < 2 {
			return fmt.Errorf("need at least 2 active days, have %d", len(xs))
		}

		graph := chart.Chart{
			Title:  "Daily Engagement",
			Width:  1280,
			Height: 500,
			XAxis:  chart.XAxis{Name: "Day of Month"},
			YAxis:  chart.YAxis{Name: "Comments"},
			Series: []chart.Series{
				chart.ContinuousSeries{
					Style: chart.Style{
						StrokeColor: chart.ColorBlue,
						StrokeWidth: 2,
					},
					XValues: xs,
					YValues: ys,
				},
			},
		}
		return graph.Render(chart.PNG, w)
	}
}

func hourlyBars(res *stats.Result) func(io.Writer) error {
	return func(w io.Writer) error {
		total := 0
		bars := make([]chart.Value, 0, 24)
		for h := 0; h < 24; h++ {
			total += res.Hourly[h]
			bars = append(bars, chart.Value{
				Value: float64(res.Hourly[h]),
				Label: fmt.Sprintf("%02d", h),
			})
		}
		if total == 0 {
			return fmt.Errorf("no comments to bucket")
		}
		return renderBars(w, "Engagement by Hour of Day", bars)
	}
}

func topPostBars(res *stats.Result) func(io.Writer) error {
	return func(w io.Writer) error {
		if len(res.TopPosts) == 0 {
			return fmt.Errorf("no posts to rank")
		}
		bars := make([]chart.Value, 0, len(res.TopPosts))
		for i, ps := range res.TopPosts {
			bars = append(bars, chart.Value{
				Value: float64(ps.CommentCount),
				Label: fmt.Sprintf("Post %d", i+1),
			})
		}
		return renderBars(w, "Most Commented Posts", bars)
	}
}

// categoryBars charts mean comments per post for each category row.
func categoryBars(title string, rows []types.CategoryStats) func(io.Writer) error {
	return func(w io.Writer) error {
		var bars []chart.Value
		for _, row := range rows {
			avg, ok := row.AvgPerPost()
			if !ok {
				continue
			}
			bars = append(bars, chart.Value{Value: avg, Label: row.Label})
		}
		if len(bars) == 0 {
			return fmt.Errorf("no category rows with posts")
		}
		return renderBars(w, title, bars)
	}
}

func postTypePie(res *stats.Result) func(io.Writer) error {
	return func(w io.Writer) error {
		var values []chart.Value
		for _, row := range res.PostTypes {
			if row.Posts == 0 {
				continue
			}
			values = append(values, chart.Value{Value: float64(row.Posts), Label: row.Label})
		}
		if len(values) == 0 {
			return fmt.Errorf("no posts to chart")
		}

		graph := chart.PieChart{
			Title:  "Post Mix by Type",
			Width:  640,
			Height: 640,
			Values: values,
		}
		return graph.Render(chart.PNG, w)
	}
}

func sentimentBars(sum *types.ReputationSummary) func(io.Writer) error {
	return func(w io.Writer) error {
		if sum.Scored == 0 {
			return fmt.Errorf("no scored comments")
		}
		bars := []chart.Value{
			{Value: float64(sum.Positive), Label: "positive", Style: barStyle(chart.ColorGreen)},
			{Value: float64(sum.Neutral), Label: "neutral", Style: barStyle(chart.ColorAlternateGray)},
			{Value: float64(sum.Negative), Label: "negative", Style: barStyle(chart.ColorRed)},
		}
		return renderBars(w, "Comment Sentiment", bars)
	}
}

func typeSentimentStack(byType []types.TypeSentiment) func(io.Writer) error {
	return func(w io.Writer) error {
		var bars []chart.StackedBar
		for _, ts := range byType {
			var vals []chart.Value
			if ts.Positive > 0 {
				vals = append(vals, chart.Value{Value: float64(ts.Positive), Label: "positive", Style: barStyle(chart.ColorGreen)})
			}
			if ts.Neutral > 0 {
				vals = append(vals, chart.Value{Value: float64(ts.Neutral), Label: "neutral", Style: barStyle(chart.ColorAlternateGray)})
			}
			if ts.Negative > 0 {
				vals = append(vals, chart.Value{Value: float64(ts.Negative), Label: "negative", Style: barStyle(chart.ColorRed)})
			}
			if len(vals) == 0 {
				continue
			}
			bars = append(bars, chart.StackedBar{Name: string(ts.PostType), Values: vals})
		}
		if len(bars) == 0 {
			return fmt.Errorf("no scored comments")
		}

		graph := chart.StackedBarChart{
			Title:      "Sentiment by Post Type",
			Width:      810,
			Height:     512,
			BarSpacing: 50,
			Bars:       bars,
		}
		return graph.Render(chart.PNG, w)
	}
}

func renderBars(w io.Writer, title string, bars []chart.Value) error {
	barWidth := 40
	spacing := 18
	width := len(bars)*(barWidth+spacing) + 160
	if width < 640 {
		width = 640
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   512,
		BarWidth: barWidth,
		Bars:     bars,
	}
	return graph.Render(chart.PNG, w)
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: c}
}
