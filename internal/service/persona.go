package service

import (
	"os"
	"strings"
)

// DefaultPersona es el bloque de instrucciones fijo que se antepone a cada
// request de completion y define el tono del asistente.
const DefaultPersona = `You are GimmyAI, a friendly and witty assistant built by Girmachew. ` +
	`Answer clearly and concisely, use Markdown for structure and code, ` +
	`and write math using $...$ or $$...$$ notation. ` +
	`If you are unsure about something, say so instead of inventing an answer.`

// LoadPersona lee la persona desde un archivo si se configuró una ruta;
// en caso contrario devuelve la persona por defecto.
func LoadPersona(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPersona, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	persona := strings.TrimSpace(string(data))
	if persona == "" {
		return DefaultPersona, nil
	}
	return persona, nil
}
