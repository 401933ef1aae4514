package httpserver

import (
	"fmt"
	"strconv"
	"strings"

	"puntacana_tours/internal/app"
	"puntacana_tours/internal/domain"
)

const (
	placeholderImage     = "https://images.pexels.com/photos/1450353/pexels-photo-1450353.jpeg?auto=compress&cs=tinysrgb&w=1200"
	placeholderCardImage = "https://images.pexels.com/photos/1450353/pexels-photo-1450353.jpeg?auto=compress&cs=tinysrgb&w=800"
	excerptRunes         = 160
	cardStars            = 5
)

// tourCard is the summary shown in tour grids.
type tourCard struct {
	Lang     string
	Href     string
	Name     string
	Location string
	Duration string
	Price    string
	Excerpt  string
	Image    string
	Stars    []bool
}

func newTourCard(lang string, t domain.Tour) tourCard {
	img := placeholderCardImage
	if len(t.ImageURLs) > 0 && t.ImageURLs[0] != "" {
		img = t.ImageURLs[0]
	}
	return tourCard{
		Lang:     lang,
		Href:     tourHref(t.ID),
		Name:     t.Name,
		Location: t.Location,
		Duration: deref(t.Duration),
		Price:    priceLabel(t.Price),
		Excerpt:  truncate(t.Description, excerptRunes),
		Image:    img,
		// decorative; cards carry no per-tour rating
		Stars: starRow(cardStars),
	}
}

func newTourCards(lang string, ts []domain.Tour) []tourCard {
	out := make([]tourCard, 0, len(ts))
	for _, t := range ts {
		out = append(out, newTourCard(lang, t))
	}
	return out
}

type reviewCard struct {
	Author  string
	Date    string
	Comment string
	Rating  int
	Stars   []bool
}

func newReviewCard(lang string, r domain.Review) reviewCard {
	return reviewCard{
		Author:  r.UserName,
		Date:    formatDate(lang, r.CreatedAt),
		Comment: r.Comment,
		Rating:  r.Rating,
		Stars:   starRow(r.Rating),
	}
}

func newReviewCards(lang string, rs []domain.Review) []reviewCard {
	out := make([]reviewCard, 0, len(rs))
	for _, r := range rs {
		out = append(out, newReviewCard(lang, r))
	}
	return out
}

type ratingSummary struct {
	Average string
	Count   int
	Label   string
	Stars   []bool
}

func newRatingSummary(lang string, rs []domain.Review) ratingSummary {
	avg := app.AverageRating(rs)
	avgText := strconv.FormatFloat(avg, 'f', 1, 64)
	label := translate(lang, "reviews.many", avgText, len(rs))
	if len(rs) == 1 {
		label = translate(lang, "reviews.one", avgText)
	}
	return ratingSummary{
		Average: avgText,
		Count:   len(rs),
		Label:   label,
		Stars:   starRow(app.StarCount(avg)),
	}
}

type thumb struct {
	Href   string
	URL    string
	Active bool
}

type gallery struct {
	Current string
	Alt     string
	Thumbs  []thumb
}

// newGallery shows image idx of the tour, or the placeholder when it has none.
// Thumbnails appear only when there is more than one image.
func newGallery(t domain.Tour, idx int) gallery {
	g := gallery{Current: placeholderImage, Alt: t.Name}
	if len(t.ImageURLs) == 0 {
		return g
	}
	if idx < 0 || idx >= len(t.ImageURLs) {
		idx = 0
	}
	g.Current = t.ImageURLs[idx]
	if len(t.ImageURLs) > 1 {
		for i, u := range t.ImageURLs {
			g.Thumbs = append(g.Thumbs, thumb{
				Href:   fmt.Sprintf("%s?img=%d", tourHref(t.ID), i),
				URL:    u,
				Active: i == idx,
			})
		}
	}
	return g
}

// priceLabel drops the fractional part: 89.99 is shown as "$89".
func priceLabel(p float64) string {
	return "$" + strconv.FormatInt(int64(p), 10)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimRightFunc(string(r[:n]), func(c rune) bool { return c == ' ' }) + "..."
}

// starRow is five flags, the first n filled.
func starRow(n int) []bool {
	out := make([]bool, domain.MaxRating)
	for i := 0; i < n && i < len(out); i++ {
		out[i] = true
	}
	return out
}

func tourHref(id int64) string { return "/tours/" + strconv.FormatInt(id, 10) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
