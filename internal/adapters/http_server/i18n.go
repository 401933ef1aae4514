package httpserver

import (
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const langCookie = "lang"

var (
	supportedLangs = []language.Tag{language.English, language.Spanish}
	langCodes      = []string{"en", "es"}
	langMatcher    = language.NewMatcher(supportedLangs)
)

// selectLang picks the page language from ?lang=, then the lang cookie, then
// Accept-Language. English is the fallback.
func selectLang(r *http.Request) string {
	var prefs []string
	if q := r.URL.Query().Get("lang"); q != "" {
		prefs = append(prefs, q)
	}
	if c, err := r.Cookie(langCookie); err == nil && c.Value != "" {
		prefs = append(prefs, c.Value)
	}
	prefs = append(prefs, r.Header.Get("Accept-Language"))
	_, idx := language.MatchStrings(langMatcher, prefs...)
	return langCodes[idx]
}

// rememberLang persists an explicit ?lang= choice so links need not carry it.
func rememberLang(w http.ResponseWriter, r *http.Request, lang string) {
	if r.URL.Query().Get("lang") == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 365 * 24 * 3600, SameSite: http.SameSiteLaxMode})
}

var printers = newPrinters()

func newPrinters() map[string]*message.Printer {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for i, code := range langCodes {
		for key, msg := range messages[code] {
			if err := b.SetString(supportedLangs[i], key, msg); err != nil {
				panic(err)
			}
		}
	}
	out := make(map[string]*message.Printer, len(langCodes))
	for i, code := range langCodes {
		out[code] = message.NewPrinter(supportedLangs[i], message.Catalog(b))
	}
	return out
}

// translate formats the catalog entry for key in lang. Unknown languages use
// English; unknown keys render as the key itself.
func translate(lang, key string, args ...any) string {
	p, ok := printers[lang]
	if !ok {
		p = printers["en"]
	}
	return p.Sprintf(key, args...)
}

var dateLayouts = map[string]string{
	"en": "1/2/2006",
	"es": "2/1/2006",
}

func formatDate(lang string, t time.Time) string {
	layout, ok := dateLayouts[lang]
	if !ok {
		layout = dateLayouts["en"]
	}
	return t.Format(layout)
}

var messages = map[string]map[string]string{
	"en": {
		"site.name":           "Punta Cana Tours",
		"nav.home":            "Home",
		"nav.tours":           "Tours",
		"nav.admin":           "Admin",
		"hero.title":          "Discover Paradise in",
		"hero.place":          "Punta Cana",
		"hero.subtitle":       "Unforgettable experiences await you in the Dominican Republic's most beautiful destination",
		"hero.cta":            "Explore Tours",
		"featured.title":      "Featured Tours",
		"featured.subtitle":   "Discover our most popular experiences that showcase the best of Punta Cana",
		"tours.title":         "All Tours",
		"tours.search":        "Search by name or location",
		"tours.filter":        "Search",
		"tours.empty":         "No tours available at the moment.",
		"tours.empty_hint":    "Please check back later!",
		"tours.no_match":      "No tours match %q.",
		"tours.prev":          "Previous",
		"tours.next":          "Next",
		"tours.page":          "Page %d of %d",
		"card.per_person":     "per person",
		"card.details":        "View details",
		"tour.description":    "Description",
		"tour.included":       "What's Included",
		"tour.duration":       "Duration",
		"tour.location":       "Location",
		"tour.back":           "Back to tours",
		"tour.not_found":      "Tour Not Found",
		"tour.not_found_body": "The tour you are looking for does not exist or was removed.",
		"tour.unavailable":    "This tour could not be loaded right now. Please try again in a moment.",
		"reviews.title":       "Reviews",
		"reviews.empty":       "No reviews yet. Be the first to share your experience!",
		"reviews.one":         "%s (1 review)",
		"reviews.many":        "%s (%d reviews)",
		"form.title":          "Leave a Review",
		"form.name":           "Your name",
		"form.rating":         "Rating",
		"form.comment":        "Comment",
		"form.comment_hint":   "Share your experience...",
		"form.submit":         "Submit Review",
		"form.required":       "This field is required.",
		"form.rating_range":   "Choose between 1 and 5 stars.",
		"rating.1":            "1 Star - Poor",
		"rating.2":            "2 Stars - Fair",
		"rating.3":            "3 Stars - Good",
		"rating.4":            "4 Stars - Very Good",
		"rating.5":            "5 Stars - Excellent",
		"admin.title":         "Tour administration",
		"admin.disabled":      "Tour administration is not enabled on this site.",
		"admin.add":           "Add a tour",
		"admin.name":          "Name",
		"admin.location":      "Location",
		"admin.price":         "Price (USD)",
		"admin.duration":      "Duration",
		"admin.description":   "Description",
		"admin.images":        "Image URLs (one per line)",
		"admin.includes":      "Included items (one per line)",
		"admin.create":        "Create tour",
		"admin.existing":      "Current tours",
		"admin.invalid_price": "Enter a price of zero or more.",
		"footer.about":        "Discover the beauty of Punta Cana with our expertly curated tours.",
		"footer.contact":      "Contact Us",
		"footer.rights":       "All rights reserved.",
		"page.error":          "Something went wrong",

		"tours.load_failed":  "Failed to load tours.",
		"tour.load_failed":   "Failed to load tour details.",
		"review.invalid":     "Please fill in all fields.",
		"review.failed":      "Failed to submit review.",
		"review.submitted":   "Review submitted successfully!",
		"review.throttled":   "You have submitted too many reviews. Please try again later.",
		"admin.tour_invalid": "Please correct the highlighted fields.",
		"admin.tour_created": "Tour created.",
		"admin.tour_failed":  "Failed to create tour.",
	},
	"es": {
		"site.name":           "Punta Cana Tours",
		"nav.home":            "Inicio",
		"nav.tours":           "Tours",
		"nav.admin":           "Administración",
		"hero.title":          "Descubre el Paraíso en",
		"hero.place":          "Punta Cana",
		"hero.subtitle":       "Experiencias inolvidables te esperan en el destino más hermoso de la República Dominicana",
		"hero.cta":            "Explorar Tours",
		"featured.title":      "Tours Destacados",
		"featured.subtitle":   "Descubre nuestras experiencias más populares con lo mejor de Punta Cana",
		"tours.title":         "Todos los Tours",
		"tours.search":        "Buscar por nombre o ubicación",
		"tours.filter":        "Buscar",
		"tours.empty":         "No hay tours disponibles en este momento.",
		"tours.empty_hint":    "¡Vuelve pronto!",
		"tours.no_match":      "Ningún tour coincide con %q.",
		"tours.prev":          "Anterior",
		"tours.next":          "Siguiente",
		"tours.page":          "Página %d de %d",
		"card.per_person":     "por persona",
		"card.details":        "Ver detalles",
		"tour.description":    "Descripción",
		"tour.included":       "Qué Incluye",
		"tour.duration":       "Duración",
		"tour.location":       "Ubicación",
		"tour.back":           "Volver a los tours",
		"tour.not_found":      "Tour No Encontrado",
		"tour.not_found_body": "El tour que buscas no existe o fue eliminado.",
		"tour.unavailable":    "No pudimos cargar este tour. Inténtalo de nuevo en un momento.",
		"reviews.title":       "Reseñas",
		"reviews.empty":       "Aún no hay reseñas. ¡Sé el primero en compartir tu experiencia!",
		"reviews.one":         "%s (1 reseña)",
		"reviews.many":        "%s (%d reseñas)",
		"form.title":          "Dejar una Reseña",
		"form.name":           "Tu nombre",
		"form.rating":         "Calificación",
		"form.comment":        "Comentario",
		"form.comment_hint":   "Comparte tu experiencia...",
		"form.submit":         "Enviar Reseña",
		"form.required":       "Este campo es obligatorio.",
		"form.rating_range":   "Elige entre 1 y 5 estrellas.",
		"rating.1":            "1 Estrella - Malo",
		"rating.2":            "2 Estrellas - Regular",
		"rating.3":            "3 Estrellas - Bueno",
		"rating.4":            "4 Estrellas - Muy Bueno",
		"rating.5":            "5 Estrellas - Excelente",
		"admin.title":         "Administración de tours",
		"admin.disabled":      "La administración de tours no está habilitada en este sitio.",
		"admin.add":           "Agregar un tour",
		"admin.name":          "Nombre",
		"admin.location":      "Ubicación",
		"admin.price":         "Precio (USD)",
		"admin.duration":      "Duración",
		"admin.description":   "Descripción",
		"admin.images":        "URLs de imágenes (una por línea)",
		"admin.includes":      "Qué incluye (uno por línea)",
		"admin.create":        "Crear tour",
		"admin.existing":      "Tours actuales",
		"admin.invalid_price": "Ingresa un precio de cero o más.",
		"footer.about":        "Descubre la belleza de Punta Cana con nuestros tours cuidadosamente seleccionados.",
		"footer.contact":      "Contáctanos",
		"footer.rights":       "Todos los derechos reservados.",
		"page.error":          "Algo salió mal",

		"tours.load_failed":  "No se pudieron cargar los tours.",
		"tour.load_failed":   "No se pudieron cargar los detalles del tour.",
		"review.invalid":     "Por favor completa todos los campos.",
		"review.failed":      "No se pudo enviar la reseña.",
		"review.submitted":   "¡Reseña enviada con éxito!",
		"review.throttled":   "Has enviado demasiadas reseñas. Inténtalo más tarde.",
		"admin.tour_invalid": "Corrige los campos marcados.",
		"admin.tour_created": "Tour creado.",
		"admin.tour_failed":  "No se pudo crear el tour.",
	},
}
