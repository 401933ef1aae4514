package httpserver

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"puntacana_tours/internal/domain"
)

func TestPriceLabel_Truncates(t *testing.T) {
	require.Equal(t, "$89", priceLabel(89))
	require.Equal(t, "$89", priceLabel(89.99))
	require.Equal(t, "$0", priceLabel(0))
}

func TestTruncate(t *testing.T) {
	short := "Sail to Saona."
	require.Equal(t, short, truncate(short, excerptRunes))

	long := strings.Repeat("ñ", 200)
	got := truncate(long, excerptRunes)
	require.Equal(t, excerptRunes+3, len([]rune(got)))
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestTourCard(t *testing.T) {
	dur := "Full day"
	c := newTourCard("en", domain.Tour{ID: 7, Name: "Saona Island", Location: "Bayahibe", Price: 89.5, Duration: &dur})
	require.Equal(t, "/tours/7", c.Href)
	require.Equal(t, "$89", c.Price)
	require.Equal(t, placeholderCardImage, c.Image)
	require.Equal(t, "Full day", c.Duration)
	require.Equal(t, []bool{true, true, true, true, true}, c.Stars)

	c = newTourCard("en", domain.Tour{ID: 8, ImageURLs: []string{"https://cdn.example/a.jpg"}})
	require.Equal(t, "https://cdn.example/a.jpg", c.Image)
	require.Empty(t, c.Duration)
}

func TestRatingSummary(t *testing.T) {
	mk := func(ratings ...int) []domain.Review {
		out := []domain.Review{}
		for _, r := range ratings {
			out = append(out, domain.Review{Rating: r})
		}
		return out
	}

	s := newRatingSummary("en", mk(5, 5, 4, 3, 5))
	require.Equal(t, "4.4 (5 reviews)", s.Label)
	require.Equal(t, []bool{true, true, true, true, false}, s.Stars)

	require.Equal(t, "0.0 (0 reviews)", newRatingSummary("en", nil).Label)
	require.Equal(t, "4.0 (1 review)", newRatingSummary("en", mk(4)).Label)
	require.Equal(t, "4.0 (3 reseñas)", newRatingSummary("es", mk(5, 4, 3)).Label)
}

func TestReviewCard(t *testing.T) {
	r := domain.Review{UserName: "Ana", Rating: 3, Comment: "Nice", CreatedAt: time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)}
	require.Equal(t, "3/14/2024", newReviewCard("en", r).Date)
	es := newReviewCard("es", r)
	require.Equal(t, "14/3/2024", es.Date)
	require.Equal(t, []bool{true, true, true, false, false}, es.Stars)
}

func TestGallery(t *testing.T) {
	g := newGallery(domain.Tour{ID: 3, Name: "Buggy"}, 0)
	require.Equal(t, placeholderImage, g.Current)
	require.Empty(t, g.Thumbs)

	g = newGallery(domain.Tour{ID: 3, ImageURLs: []string{"one.jpg"}}, 0)
	require.Equal(t, "one.jpg", g.Current)
	require.Empty(t, g.Thumbs, "a single image needs no thumbnails")

	g = newGallery(domain.Tour{ID: 3, ImageURLs: []string{"a.jpg", "b.jpg"}}, 1)
	require.Equal(t, "b.jpg", g.Current)
	require.Len(t, g.Thumbs, 2)
	require.True(t, g.Thumbs[1].Active)
	require.Equal(t, "/tours/3?img=0", g.Thumbs[0].Href)
}
