package golfdata

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseScore преобразует строковую кодировку delta-to-par провайдера в число.
//
//	"E", "EVEN"      -> 0
//	"-12", "+3", "3" -> знаковое целое
//	"WD", "CUT", ... -> ok=false (числового результата нет)
//
// Нечисловые маркеры не являются ошибкой: ингест записывает NULL и
// продолжает обработку.
func ParseScore(raw string) (score int, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	if s == "E" || s == "EVEN" {
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatScore выполняет обратную операцию к ParseScore для валидных
// значений: FormatScore(ParseScore(s)) даёт нормализованную форму s.
func FormatScore(score int) string {
	switch {
	case score == 0:
		return "E"
	case score > 0:
		return fmt.Sprintf("+%d", score)
	default:
		return strconv.Itoa(score)
	}
}

// ParsePosition извлекает числовую позицию из строки лидерборда.
// Позиции вида "T5" (tied) нормализуются до числа; "-", "" и маркеры
// вроде "CUT" возвращают ok=false.
func ParsePosition(raw string) (pos int, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "T")
	if s == "" || s == "-" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
