package region

// mexicoAliases maps deprecated and long-form official names onto canonical IDs.
var mexicoAliases = map[string]ID{
	"Coahuila de Zaragoza":            "Coahuila",
	"Distrito Federal":                "Ciudad de México",
	"México":                          "Estado de México",
	"Mexico":                          "Estado de México",
	"Mexico City":                     "Ciudad de México",
	"Michoacán de Ocampo":             "Michoacán",
	"Veracruz de Ignacio de la Llave": "Veracruz",
}

// MexicoAliases returns a copy of the static alias table
func MexicoAliases() map[string]ID {
	out := make(map[string]ID, len(mexicoAliases))
	for k, v := range mexicoAliases {
		out[k] = v
	}
	return out
}
