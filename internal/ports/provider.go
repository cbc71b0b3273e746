package ports

import "context"

// TextProvider es un backend de generación de texto. Se implementa dos veces
// con la misma firma: el proveedor primario remoto y el local de respaldo.
type TextProvider interface {
	// Name identifica al proveedor en logs y mensajes de error.
	Name() string

	// Complete envía el prompt y devuelve el texto crudo de la respuesta.
	// Una respuesta vacía o con forma inesperada se señala como error.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
