package document

import (
	"strings"
	"testing"
)

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"123.456.789-01", "12345678901"},
		{"(11) 98765-4321", "11987654321"},
		{"abc", ""},
		{" 1 2 3 ", "123"},
	}
	for _, tt := range tests {
		if got := Digits(tt.in); got != tt.want {
			t.Errorf("Digits(%q) = %q, ожидается %q", tt.in, got, tt.want)
		}
	}
}

// Валидны ровно 9 и 11 цифр после удаления нецифровых символов.
func TestIsValid_DigitLengths(t *testing.T) {
	for n := 0; n <= 15; n++ {
		s := strings.Repeat("7", n)
		want := n == 9 || n == 11
		if got := IsValid(s); got != want {
			t.Errorf("IsValid(%d цифр) = %v, ожидается %v", n, got, want)
		}
		// Нецифровые символы не влияют на результат
		decorated := "-" + strings.Join(strings.Split(s, ""), ".") + " "
		if got := IsValid(decorated); got != want {
			t.Errorf("IsValid(%q) = %v, ожидается %v", decorated, got, want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"12345678901", KindCPF},
		{"123.456.789-01", KindCPF},
		{"123456789", KindRG},
		{"12.345.678-9", KindRG},
		{"1234567890", KindUnknown},
		{"", KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.in); got != tt.want {
			t.Errorf("KindOf(%q) = %v, ожидается %v", tt.in, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345678901", "123.456.789-01"},
		{"123456789", "12.345.678-9"},
		{"12.345.678-9", "12.345.678-9"},
		{"12345", "12345"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%q) = %q, ожидается %q", tt.in, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("12345678901"); got != "CPF: 123.456.789-01" {
		t.Errorf("Label(CPF) = %q", got)
	}
	if got := Label("123456789"); got != "RG: 12.345.678-9" {
		t.Errorf("Label(RG) = %q", got)
	}
	if got := Label("1234"); got != "1234" {
		t.Errorf("Label(неизвестный) = %q, ожидается исходная строка", got)
	}
}

func TestFormatPhone(t *testing.T) {
	if got := FormatPhone("11987654321"); got != "(11) 98765-4321" {
		t.Errorf("FormatPhone = %q, ожидается (11) 98765-4321", got)
	}
	if got := FormatPhone("1198765"); got != "1198765" {
		t.Errorf("FormatPhone(короткий) = %q, ожидается исходная строка", got)
	}
	if !IsValidPhone("(11) 98765-4321") {
		t.Error("IsValidPhone: телефон из 11 цифр должен быть валиден")
	}
	if IsValidPhone("98765-4321") {
		t.Error("IsValidPhone: телефон из 9 цифр не должен быть валиден")
	}
}
