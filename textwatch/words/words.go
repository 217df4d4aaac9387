// Package words spells a time of day as three short Turkish phrases.
package words

var ones = [...]string{"", "bir", "iki", "üç", "dört", "beş", "altı", "yedi", "sekiz", "dokuz"}

var tens = [...]string{"", "on", "yirmi", "otuz", "kırk", "elli"}

const (
	// Hour is written in place of the minutes when the minute is zero.
	Hour = "saat"
	// Zero precedes single-digit minutes.
	Zero = "sıfır"
)

// Formatter turns an hour (0-23) and minute (0-59) into three lines.
type Formatter interface {
	Format(hour, minute int) (a, b, c string)
}

// Turkish reads the clock on a 12-hour dial: a is the hour, b the minute
// tens (or Zero for 1-9, or Hour on the hour) and c the minute ones.
//
//	03:15 -> "üç", "on", "beş"
//	03:05 -> "üç", "sıfır", "beş"
//	03:00 -> "üç", "saat", ""
type Turkish struct{}

func (Turkish) Format(hour, minute int) (a, b, c string) {
	a = HourWords(hour)
	minute = ((minute % 60) + 60) % 60
	switch {
	case minute == 0:
		return a, Hour, ""
	case minute < 10:
		return a, Zero, ones[minute]
	default:
		return a, tens[minute/10], ones[minute%10]
	}
}

// HourWords spells hour on a 12-hour dial; 0 and 12 both read "on iki".
func HourWords(hour int) string {
	h := ((hour % 12) + 12) % 12
	switch h {
	case 0:
		return "on iki"
	case 10:
		return "on"
	case 11:
		return "on bir"
	}
	return ones[h]
}
