// Пакет document - проверка и маскирование документов пациента
// (CPF, RG) и номера телефона.
//
// Тип документа определяется только по количеству цифр:
// 11 цифр - CPF, 9 цифр - RG. Контрольные суммы не проверяются.
package document

import "strings"

// Kind - тип документа, выведенный из количества цифр.
type Kind int

const (
	// KindUnknown - количество цифр не соответствует ни CPF, ни RG.
	KindUnknown Kind = iota
	// KindCPF - 11 цифр.
	KindCPF
	// KindRG - 9 цифр.
	KindRG
)

const (
	cpfDigits   = 11
	rgDigits    = 9
	phoneDigits = 11
)

// String возвращает короткое имя типа документа.
func (k Kind) String() string {
	switch k {
	case KindCPF:
		return "CPF"
	case KindRG:
		return "RG"
	default:
		return "unknown"
	}
}

// Digits удаляет из строки все символы, кроме цифр 0-9.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// KindOf определяет тип документа по количеству цифр.
func KindOf(s string) Kind {
	switch len(Digits(s)) {
	case cpfDigits:
		return KindCPF
	case rgDigits:
		return KindRG
	default:
		return KindUnknown
	}
}

// IsValid - true, если после удаления нецифровых символов осталось
// ровно 11 (CPF) или 9 (RG) цифр. Пустая строка невалидна.
func IsValid(s string) bool {
	return KindOf(s) != KindUnknown
}

// IsValidPhone - true для телефона из 11 цифр (DDD + номер).
func IsValidPhone(s string) bool {
	return len(Digits(s)) == phoneDigits
}

// Format применяет маску документа: CPF - NNN.NNN.NNN-NN,
// RG - NN.NNN.NNN-N. Строки другой длины возвращаются как есть.
func Format(s string) string {
	d := Digits(s)
	switch len(d) {
	case cpfDigits:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
	case rgDigits:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "-" + d[8:9]
	default:
		return s
	}
}

// Label возвращает маскированный документ с префиксом типа:
// "CPF: 123.456.789-01" или "RG: 12.345.678-9".
func Label(s string) string {
	switch KindOf(s) {
	case KindCPF, KindRG:
		return KindOf(s).String() + ": " + Format(s)
	default:
		return s
	}
}

// FormatPhone применяет маску (NN) NNNNN-NNNN к телефону из 11 цифр.
func FormatPhone(s string) string {
	d := Digits(s)
	if len(d) != phoneDigits {
		return s
	}
	return "(" + d[0:2] + ") " + d[2:7] + "-" + d[7:11]
}
