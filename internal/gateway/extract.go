package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON localiza el único objeto JSON embebido en la salida libre de un
// modelo: desde la primera '{' hasta la '}' exterior que la equilibra. El
// escaneo es greedy — se queda con el span balanceado más grande, no con la
// primera '}' — y entiende strings y escapes, así que las llaves dentro de
// valores de texto no cuentan. Todo lo que queda fuera del span es comentario
// del modelo y se descarta.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("gateway.ExtractJSON: no JSON object in text")
	}

	depth := 0
	inString := false
	escaped := false
	end := -1

scan:
	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i // candidato; seguir escaneando por si hay un cierre más lejano
			}
			if depth < 0 {
				break scan // una '}' de más: ya no puede reequilibrarse
			}
		}
	}

	if end < 0 {
		return "", fmt.Errorf("gateway.ExtractJSON: unbalanced JSON object")
	}

	span := text[start : end+1]
	if !json.Valid([]byte(span)) {
		return "", fmt.Errorf("gateway.ExtractJSON: extracted span is not valid JSON")
	}
	return span, nil
}
