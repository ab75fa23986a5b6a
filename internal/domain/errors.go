package domain

import (
	"errors"
	"fmt"
)

// Ошибки слоя хранения. Сервисы и API сравнивают их через errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("storage inconsistency")
	ErrValidation = errors.New("validation failed")

	// ErrInvalidReference ID жанра или рейтинга вне каталога.
	// Оборачивает ErrNotFound: наружу отдается как "не найдено".
	ErrInvalidReference = fmt.Errorf("invalid catalog reference: %w", ErrNotFound)
)
