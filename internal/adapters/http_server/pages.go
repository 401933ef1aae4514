package httpserver

import (
	"bytes"
	"context"
	"crypto/subtle"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"puntacana_tours/internal/app"
	"puntacana_tours/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Pages serves the HTML site.
type Pages struct {
	catalog   *app.Catalog
	seeder    *app.SeedService
	limiter   domain.SubmissionLimiter
	adminUser string
	adminPass string
	tmpl      *template.Template
}

type PagesConfig struct {
	Catalog *app.Catalog
	// Limiter may be nil; submissions are then never throttled.
	Limiter domain.SubmissionLimiter
	// AdminPassword empty turns the admin page into a read-only placeholder.
	AdminUser     string
	AdminPassword string
}

func NewPages(cfg PagesConfig) (*Pages, error) {
	funcMap := template.FuncMap{
		"t": translate,
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Pages{
		catalog:   cfg.Catalog,
		seeder:    app.NewSeedService(cfg.Catalog),
		limiter:   cfg.Limiter,
		adminUser: cfg.AdminUser,
		adminPass: cfg.AdminPassword,
		tmpl:      tmpl,
	}, nil
}

func (s *Server) MountPages(p *Pages) error {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static sub-fs: %w", err)
	}
	s.mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	s.mux.Get("/", p.home)
	s.mux.Get("/tours/{id}", p.detail)
	s.mux.Post("/tours/{id}/reviews", p.submitReview)
	s.mux.Get("/admin", p.admin)
	s.mux.Post("/admin/tours", p.createTour)
	s.mux.NotFound(p.notFound)
	return nil
}

// ---- page data ----

type noticeView struct {
	Level string
	Text  string
}

type page struct {
	Lang   string
	Title  string
	Active string
	Path   string
	Notice *noticeView
}

func (p *Pages) newPage(r *http.Request, lang, title, active string, n *app.Notice) page {
	pg := page{Lang: lang, Title: title, Active: active, Path: r.URL.Path}
	if n != nil {
		pg.Notice = &noticeView{Level: string(n.Level), Text: translate(lang, n.Key)}
	}
	return pg
}

type homeData struct {
	page
	Failed   bool
	Featured []tourCard
	All      []tourCard
	Listing  app.TourPage
	PrevHref string
	NextHref string
}

type detailData struct {
	page
	Failed    bool
	Tour      domain.Tour
	Price     string
	Duration  string
	Gallery   gallery
	Rating    ratingSummary
	Reviews   []reviewCard
	Form      app.ReviewForm
	FormErr   map[string]bool
	Ratings   []int
	ActionURL string
}

type adminForm struct {
	Name        string
	Location    string
	Price       string
	Duration    string
	Description string
	Images      string
	Includes    string
}

type adminData struct {
	page
	Enabled bool
	Form    adminForm
	FormErr map[string]bool
	Tours   []tourCard
	Created *tourCard
}

// ---- handlers ----

func (p *Pages) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := selectLang(r)
	rememberLang(w, r, lang)

	l := app.NewTourList(p.catalog)
	err := l.Load(ctx)
	if ctx.Err() != nil {
		return
	}

	q := r.URL.Query().Get("q")
	pageNo, _ := strconv.Atoi(r.URL.Query().Get("page"))
	listing := l.Filter(q, pageNo)

	data := homeData{
		page:     p.newPage(r, lang, translate(lang, "site.name"), "home", l.Notice),
		Failed:   err != nil,
		Featured: newTourCards(lang, l.Featured),
		All:      newTourCards(lang, listing.Items),
		Listing:  listing,
	}
	if listing.HasPrev() {
		data.PrevHref = listHref(listing.Query, listing.Page-1)
	}
	if listing.HasNext() {
		data.NextHref = listHref(listing.Query, listing.Page+1)
	}
	// a failed list still renders the page, with an empty grid and a notice
	p.render(w, r, http.StatusOK, "home.html", data)
}

func (p *Pages) detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := selectLang(r)
	rememberLang(w, r, lang)

	id, ok := tourID(r)
	if !ok {
		p.notFound(w, r)
		return
	}
	d := app.NewTourDetail(p.catalog, id)
	if !p.loadDetail(ctx, w, r, lang, d) {
		return
	}
	if img, err := strconv.Atoi(r.URL.Query().Get("img")); err == nil {
		d.SelectImage(img)
	}
	p.render(w, r, http.StatusOK, "detail.html", p.detailData(r, lang, d))
}

// loadDetail runs the detail load and renders the not-found and failure
// pages itself. It reports whether the caller should continue.
func (p *Pages) loadDetail(ctx context.Context, w http.ResponseWriter, r *http.Request, lang string, d *app.TourDetail) bool {
	_ = d.Load(ctx)
	if ctx.Err() != nil {
		return false
	}
	switch d.State {
	case app.StateNotFound:
		p.notFound(w, r)
		return false
	case app.StateFailed:
		p.render(w, r, http.StatusServiceUnavailable, "detail.html", p.detailData(r, lang, d))
		return false
	}
	return true
}

func (p *Pages) submitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := selectLang(r)

	id, ok := tourID(r)
	if !ok {
		p.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	rating, err := strconv.Atoi(r.PostForm.Get("rating"))
	if err != nil {
		rating = 0
	}
	form := app.ReviewForm{
		UserName: r.PostForm.Get("user_name"),
		Rating:   rating,
		Comment:  r.PostForm.Get("comment"),
	}

	d := app.NewTourDetail(p.catalog, id)
	if !p.loadDetail(ctx, w, r, lang, d) {
		return
	}

	// invalid forms are answered by SubmitReview without spending quota
	_, verr := app.ValidateReview(id, form)
	if verr == nil && !allowSubmission(ctx, p.limiter, remoteIP(r)) {
		d.Throttled(form)
		p.render(w, r, http.StatusTooManyRequests, "detail.html", p.detailData(r, lang, d))
		return
	}

	status := http.StatusOK
	if err := d.SubmitReview(ctx, form); err != nil {
		if ctx.Err() != nil {
			return
		}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusServiceUnavailable
		}
	}
	p.render(w, r, status, "detail.html", p.detailData(r, lang, d))
}

func (p *Pages) detailData(r *http.Request, lang string, d *app.TourDetail) detailData {
	title := translate(lang, "site.name")
	if d.State == app.StateReady {
		title = d.Tour.Name + " | " + title
	}
	data := detailData{
		page:      p.newPage(r, lang, title, "tours", d.Notice),
		Failed:    d.State == app.StateFailed,
		Tour:      d.Tour,
		Price:     priceLabel(d.Tour.Price),
		Duration:  deref(d.Tour.Duration),
		Gallery:   newGallery(d.Tour, d.ImageIndex),
		Rating:    newRatingSummary(lang, d.Reviews),
		Reviews:   newReviewCards(lang, d.Reviews),
		Form:      d.Form,
		FormErr:   fieldSet(d.FormErr),
		Ratings:   []int{5, 4, 3, 2, 1},
		ActionURL: tourHref(d.Tour.ID) + "/reviews",
	}
	return data
}

func (p *Pages) admin(w http.ResponseWriter, r *http.Request) {
	lang := selectLang(r)
	rememberLang(w, r, lang)
	if p.adminPass != "" && !p.authorized(w, r) {
		return
	}
	p.renderAdmin(w, r, lang, http.StatusOK, adminForm{}, nil, nil, nil)
}

func (p *Pages) createTour(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := selectLang(r)
	if p.adminPass == "" {
		p.renderAdmin(w, r, lang, http.StatusForbidden, adminForm{}, nil, nil, nil)
		return
	}
	if !p.authorized(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := adminForm{
		Name:        r.PostForm.Get("name"),
		Location:    r.PostForm.Get("location"),
		Price:       r.PostForm.Get("price"),
		Duration:    r.PostForm.Get("duration"),
		Description: r.PostForm.Get("description"),
		Images:      r.PostForm.Get("image_urls"),
		Includes:    r.PostForm.Get("includes"),
	}
	in, verr := form.toNewTour()
	if verr != nil {
		n := &app.Notice{Level: app.NoticeError, Key: app.KeyTourInvalid}
		p.renderAdmin(w, r, lang, http.StatusUnprocessableEntity, form, verr, nil, n)
		return
	}

	t, err := p.seeder.SeedTour(ctx, in)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			n := &app.Notice{Level: app.NoticeError, Key: app.KeyTourInvalid}
			p.renderAdmin(w, r, lang, http.StatusUnprocessableEntity, form, ve, nil, n)
			return
		}
		n := &app.Notice{Level: app.NoticeError, Key: app.KeyTourCreateFailed}
		p.renderAdmin(w, r, lang, http.StatusServiceUnavailable, form, nil, nil, n)
		return
	}
	log.Info().Int64("tour_id", t.ID).Str("name", t.Name).Msg("tour created")
	card := newTourCard(lang, t)
	n := &app.Notice{Level: app.NoticeSuccess, Key: app.KeyTourCreated}
	p.renderAdmin(w, r, lang, http.StatusCreated, adminForm{}, nil, &card, n)
}

// toNewTour parses the form. Price parse failures are reported together with
// the domain checks.
func (f adminForm) toNewTour() (domain.NewTour, *domain.ValidationError) {
	in := domain.NewTour{
		Name:        strings.TrimSpace(f.Name),
		Location:    strings.TrimSpace(f.Location),
		Description: strings.TrimSpace(f.Description),
		ImageURLs:   splitLines(f.Images),
		Includes:    splitLines(f.Includes),
	}
	if d := strings.TrimSpace(f.Duration); d != "" {
		in.Duration = &d
	}
	v := &domain.ValidationError{}
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		v.Add("price", "must be a number")
	}
	in.Price = price

	var ve *domain.ValidationError
	if errors.As(in.Validate(), &ve) {
		for _, fe := range ve.Fields {
			if !v.Has(fe.Field) {
				v.Fields = append(v.Fields, fe)
			}
		}
	}
	if len(v.Fields) > 0 {
		return domain.NewTour{}, v
	}
	return in, nil
}

func (p *Pages) renderAdmin(w http.ResponseWriter, r *http.Request, lang string, status int, form adminForm, verr *domain.ValidationError, created *tourCard, n *app.Notice) {
	data := adminData{
		page:    p.newPage(r, lang, translate(lang, "admin.title"), "admin", n),
		Enabled: p.adminPass != "",
		Form:    form,
		FormErr: fieldSet(verr),
		Created: created,
	}
	if data.Enabled {
		ts, err := p.catalog.ListTours(r.Context())
		if r.Context().Err() != nil {
			return
		}
		if err == nil {
			data.Tours = newTourCards(lang, ts)
		}
	}
	p.render(w, r, status, "admin.html", data)
}

// authorized checks HTTP basic credentials and writes the challenge when they
// do not match.
func (p *Pages) authorized(w http.ResponseWriter, r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if ok &&
		subtle.ConstantTimeCompare([]byte(user), []byte(p.adminUser)) == 1 &&
		subtle.ConstantTimeCompare([]byte(pass), []byte(p.adminPass)) == 1 {
		return true
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="tours admin", charset="UTF-8"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
	return false
}

func (p *Pages) notFound(w http.ResponseWriter, r *http.Request) {
	lang := selectLang(r)
	data := p.newPage(r, lang, translate(lang, "tour.not_found"), "", nil)
	p.render(w, r, http.StatusNotFound, "not_found.html", data)
}

// render executes a full page into a buffer so template errors become a clean
// 500. Successful GET pages carry a weak ETag and honour If-None-Match.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	body := buf.Bytes()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", "Accept-Language, Cookie")
	if r.Method == http.MethodGet && status == http.StatusOK {
		etag := etagOf(body)
		w.Header().Set("ETag", etag)
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("template", name).Msg("write page body failed")
	}
}

// allowSubmission asks the limiter about key. Limiter failures let the
// submission through.
func allowSubmission(ctx context.Context, l domain.SubmissionLimiter, key string) bool {
	if l == nil {
		return true
	}
	ok, err := l.Allow(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("client", key).Msg("submission limiter unavailable, allowing")
		return true
	}
	return ok
}

func tourID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func listHref(q string, page int) string {
	v := "/?page=" + strconv.Itoa(page)
	if q != "" {
		v += "&q=" + url.QueryEscape(q)
	}
	return v + "#tours"
}

func fieldSet(v *domain.ValidationError) map[string]bool {
	if v == nil {
		return nil
	}
	out := make(map[string]bool, len(v.Fields))
	for _, f := range v.Fields {
		out[f.Field] = true
	}
	return out
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
