package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"telegram-dialog-insights/internal/domain"
)

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "личный", TypeLabel(domain.TypeUser))
	assert.Equal(t, "канал", TypeLabel(domain.TypeChannel))
	assert.Equal(t, "супергруппа", TypeLabel(domain.TypeSupergroup))

	// Неизвестный тип отображается без преобразования.
	assert.Equal(t, "secret", TypeLabel(domain.DialogType("secret")))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "да", YesNo(true))
	assert.Equal(t, "нет", YesNo(false))
}
