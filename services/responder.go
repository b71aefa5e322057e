package services

import (
	"strings"

	"innova/translations"
)

type keywordResponse struct {
	Keyword  string
	Response string
}

// Responder is the poetic chatbot. It scans the message for the first known
// keyword and answers with its canned line; keyword order matters, so the
// table is a slice rather than a map.
type Responder struct {
	responses map[translations.Language][]keywordResponse
	fallback  map[translations.Language]string
}

func NewResponder() *Responder {
	return &Responder{
		responses: map[translations.Language][]keywordResponse{
			translations.Spanish: {
				{"hola", "¡Hola! Entre versos y matrículas ando. ¿De qué quieres hablar?"},
				{"poema", "Bajo el faro de la autopista,\nuna matrícula brilla en la pista:\nletras y cifras, breve poesía,\nviajera anónima de mediodía."},
				{"matrícula", "Una matrícula válida lleva solo letras mayúsculas y dígitos. Si aparece otro carácter, el lector la rechaza con pena."},
				{"innova", "Innova es un pequeño taller donde las cámaras leen matrículas y un bot les dedica poemas."},
				{"gracias", "Gracias a ti. Los versos se escriben solos cuando alguien los espera."},
				{"adiós", "Adiós, viajero. Que todas tus matrículas sean válidas."},
			},
			translations.English: {
				{"hello", "Hello! I wander between verses and license plates. What shall we talk about?"},
				{"hi", "Hello! I wander between verses and license plates. What shall we talk about?"},
				{"poem", "Under the highway's amber glow,\na license plate drifts to and fro:\nletters and digits, a brief refrain,\nan anonymous traveler in the rain."},
				{"plate", "A valid plate carries only uppercase letters and digits. Anything else and the reader politely declines."},
				{"innova", "Innova is a small workshop where cameras read plates and a bot writes them poems."},
				{"thank", "Thank you. Verses write themselves when someone is waiting for them."},
				{"bye", "Farewell, traveler. May all your plates be valid."},
			},
			translations.Catalan: {
				{"hola", "Hola! Vaig entre versos i matrícules. De què vols parlar?"},
				{"poema", "Sota el llum de l'autopista,\nuna matrícula creua la vista:\nlletres i xifres, breu poesia,\nviatgera anònima de migdia."},
				{"matrícula", "Una matrícula vàlida només porta lletres majúscules i dígits. Qualsevol altre caràcter i el lector la rebutja."},
				{"innova", "Innova és un petit taller on les càmeres llegeixen matrícules i un bot els escriu poemes."},
				{"gràcies", "Gràcies a tu. Els versos s'escriuen sols quan algú els espera."},
				{"adéu", "Adéu, viatger. Que totes les teves matrícules siguin vàlides."},
			},
		},
		fallback: map[translations.Language]string{
			translations.Spanish: "¿Podrías reformular tu pregunta?",
			translations.English: "Could you rephrase your question?",
			translations.Catalan: "Podries reformular la teva pregunta?",
		},
	}
}

func (r *Responder) Respond(message string, lang translations.Language) string {
	lang = translations.Normalize(string(lang))
	lowered := strings.ToLower(strings.TrimSpace(message))

	for _, kr := range r.responses[lang] {
		if strings.Contains(lowered, kr.Keyword) {
			return kr.Response
		}
	}
	return r.fallback[lang]
}
