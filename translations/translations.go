// Package translations holds the chatbot texts for the three supported
// display languages.
package translations

type Language string

const (
	English Language = "en"
	Spanish Language = "es"
	Catalan Language = "ca"
)

type Translation struct {
	ChatbotWelcome string
	ChatbotOptions []string
}

var texts = map[Language]Translation{
	Spanish: {
		ChatbotWelcome: "¡Hola! Soy el chatbot poético de Innova. Pregúntame sobre poesía y matrículas.",
		ChatbotOptions: []string{
			"Escríbeme un poema",
			"¿Qué es una matrícula válida?",
			"Cuéntame sobre Innova",
		},
	},
	English: {
		ChatbotWelcome: "Hi! I am the Innova poetic chatbot. Ask me about poetry and license plates.",
		ChatbotOptions: []string{
			"Write me a poem",
			"What is a valid plate?",
			"Tell me about Innova",
		},
	},
	Catalan: {
		ChatbotWelcome: "Hola! Soc el chatbot poètic d'Innova. Pregunta'm sobre poesia i matrícules.",
		ChatbotOptions: []string{
			"Escriu-me un poema",
			"Què és una matrícula vàlida?",
			"Explica'm coses d'Innova",
		},
	},
}

// Normalize maps any string to a supported language. Unrecognized values
// fall back to Spanish, the default display language.
func Normalize(s string) Language {
	switch Language(s) {
	case English, Spanish, Catalan:
		return Language(s)
	default:
		return Spanish
	}
}

func For(lang Language) Translation {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[Spanish]
}
