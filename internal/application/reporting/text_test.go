package reporting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/Continuity-Map/internal/application/reporting"
)

func TestStripAccents(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bogotá", "Bogota"},
		{"Información del Evento", "Informacion del Evento"},
		{"CASTAÑEDA", "CASTANEDA"},
		{"línea\nnueva\tcon tab", "linea nueva con tab"},
		{"control\x07", "control"},
		{"Ω-zone", "?-zone"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, reporting.StripAccents(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Bogo", reporting.Truncate("Bogotá", 4))
	assert.Equal(t, "Bogotá", reporting.Truncate("Bogotá", 6))
	assert.Equal(t, "Bogotá", reporting.Truncate("Bogotá", 10))
	assert.Equal(t, "", reporting.Truncate("Bogotá", 0))
}

func TestPDFText(t *testing.T) {
	assert.Equal(t, "Jose Maria", reporting.PDFText("  José María  ", 0))
	assert.Equal(t, "Jose", reporting.PDFText("José María", 4))
}
