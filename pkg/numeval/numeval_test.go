package numeval

import (
	"errors"
	"testing"

	"src.servo.sh/pkg/tt"
)

func TestIsNumber(t *testing.T) {
	tt.Test(t, tt.Fn("IsNumber", IsNumber), tt.Table{
		tt.Args("0").Rets(true),
		tt.Args("42").Rets(true),
		tt.Args("-42").Rets(true),
		tt.Args("3.14").Rets(true),
		tt.Args("-0.5").Rets(true),
		tt.Args("").Rets(false),
		tt.Args("-").Rets(false),
		tt.Args(".5").Rets(false),
		tt.Args("5.").Rets(false),
		tt.Args("1.2.3").Rets(false),
		tt.Args("1a").Rets(false),
		tt.Args("--1").Rets(false),
	})
}

func TestNative(t *testing.T) {
	tt.Test(t, tt.Fn("Eval", Native{}.Eval), tt.Table{
		tt.Args("1").Rets("1", nil),
		tt.Args("1 + 2").Rets("3", nil),
		tt.Args("2 + 3 * 4").Rets("14", nil),
		tt.Args("(2 + 3) * 4").Rets("20", nil),
		tt.Args("10 - 2 - 3").Rets("5", nil),
		tt.Args("7 / 2").Rets("3.5", nil),
		tt.Args("1 / 3").Rets("0.33333333333333333333", nil),
		tt.Args("2 / 3").Rets("0.66666666666666666667", nil),
		tt.Args("6 / 3").Rets("2", nil),
		tt.Args("7 % 3").Rets("1", nil),
		tt.Args("-7 % 3").Rets("-1", nil),
		tt.Args("7.5 % 2").Rets("1.5", nil),
		tt.Args("2 ^ 10").Rets("1024", nil),
		tt.Args("2 ^ 3 ^ 2").Rets("512", nil),
		tt.Args("2 ^ -1").Rets("0.5", nil),
		tt.Args("-2 ^ 2").Rets("4", nil),
		tt.Args("2 * -3").Rets("-6", nil),
		tt.Args("0.1 + 0.2").Rets("0.3", nil),
		tt.Args("1.50").Rets("1.5", nil),
		tt.Args("99999999999999999999 + 1").Rets("100000000000000000000", nil),
		tt.Args("1 ^ 65536").Rets("1", nil),
		tt.Args("(0 - 1) ^ 65535").Rets("-1", nil),
	})
}

func TestNative_PowerSizeLimit(t *testing.T) {
	for _, expr := range []string{
		"(9^65536)^65536",
		"(9^65536)^-65536",
		"(2^65536)^100",
		"(1/(9^65536))^65536",
	} {
		_, err := Native{}.Eval(expr)
		var numErr *Error
		if !errors.As(err, &numErr) || numErr.Message != "result of power too large" {
			t.Errorf("Eval(%q) -> %v, want result of power too large", expr, err)
		}
	}
	// Below the limit the result is computed.
	if _, err := (Native{}).Eval("(2^1024)^1024"); err != nil {
		t.Errorf("Eval((2^1024)^1024) -> %v", err)
	}
}

func TestNative_Errors(t *testing.T) {
	for _, expr := range []string{
		"", "1 +", "1 / 0", "1 % 0", "0 ^ -1", "2 ^ 0.5", "2 ^ 100000",
		"(1 + 2", "1 2", "a + 1", "1..2", "1 $ 2",
	} {
		_, err := Native{}.Eval(expr)
		var numErr *Error
		if !errors.As(err, &numErr) {
			t.Errorf("Eval(%q) -> %v, want *Error", expr, err)
		}
	}
}
