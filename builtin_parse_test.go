package nucleus

import "testing"

func Test_Parse_Int(t *testing.T) {
	wantInt(t, evalOne(t, `(parseInt "12,345")`), 12345)
	wantInt(t, evalOne(t, `(parseInt "-42")`), -42)
	wantNull(t, evalOne(t, `(parseInt "abc")`))
	wantNull(t, evalOne(t, `(parseInt "1.5")`))
	wantNull(t, evalOne(t, `(parseInt "")`))
}

func Test_Parse_Float(t *testing.T) {
	wantNum(t, evalOne(t, `(parseFloat "3.25")`), 3.25)
	wantNum(t, evalOne(t, `(parseFloat "1,234.5")`), 1234.5)
	wantNum(t, evalOne(t, `(parseFloat "1.5e3")`), 1500)
	wantNum(t, evalOne(t, `(parseFloat "7")`), 7)
	wantNull(t, evalOne(t, `(parseFloat "x7")`))
}

func Test_Parse_Number_Percent(t *testing.T) {
	wantNum(t, evalOne(t, `(parseNumber "45%")`), 0.45)
	wantNum(t, evalOne(t, `(parseNumber "4.5")`), 4.5)
	wantNull(t, evalOne(t, `(parseNumber "n/a")`))
}

func Test_Parse_Currency_US(t *testing.T) {
	wantInt(t, evalOne(t, `(parseCurrency "$2,340,000")`), 2340000)
	wantNum(t, evalOne(t, `(parseCurrency "$1,234.56")`), 1234.56)
	wantInt(t, evalOne(t, `(parseCurrency "€500")`), 500)
	wantInt(t, evalOne(t, `(parseCurrency "(42)")`), -42)
	wantNull(t, evalOne(t, `(parseCurrency "whatever")`))
}

func Test_Parse_Currency_EU_Detection(t *testing.T) {
	// last ',' after last '.' means ',' is the decimal mark
	wantNum(t, evalOne(t, `(parseCurrency "($1.234,56)")`), -1234.56)
	wantNum(t, evalOne(t, `(parseCurrency "€1234,56")`), 1234.56)
	wantInt(t, evalOne(t, `(parseCurrency "€1.234.567")`), 1234567)
}

func Test_Parse_Date_Shapes(t *testing.T) {
	wantStr(t, evalOne(t, `(parseDate "2024-03-15")`), "2024-03-15")
	wantStr(t, evalOne(t, `(parseDate "3/15/2024")`), "2024-03-15")
	wantStr(t, evalOne(t, `(parseDate "3/15/2024" "US")`), "2024-03-15")
	wantStr(t, evalOne(t, `(parseDate "15/3/2024" "EU")`), "2024-03-15")
	wantStr(t, evalOne(t, `(parseDate "March 15, 2024")`), "2024-03-15")
	wantStr(t, evalOne(t, `(parseDate "15 March 2024")`), "2024-03-15")
	wantStr(t, evalOne(t, `(parseDate "15-Mar-24")`), "2024-03-15")
	wantNull(t, evalOne(t, `(parseDate "someday")`))
}

func Test_Parse_Date_TwoDigit_Year_Pivot(t *testing.T) {
	wantStr(t, evalOne(t, `(parseDate "1-Jan-49")`), "2049-01-01")
	wantStr(t, evalOne(t, `(parseDate "1-Jan-50")`), "1950-01-01")
	wantStr(t, evalOne(t, `(parseDate "1-Jan-99")`), "1999-01-01")
}

func Test_Parse_Date_Validates_Calendar(t *testing.T) {
	wantStr(t, evalOne(t, `(parseDate "29-Feb-24")`), "2024-02-29")
	wantNull(t, evalOne(t, `(parseDate "30-Feb-24")`))
	wantNull(t, evalOne(t, `(parseDate "2023-02-29")`))
	wantNull(t, evalOne(t, `(parseDate "13/13/2024")`))
}
