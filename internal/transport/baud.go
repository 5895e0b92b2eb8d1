package transport

// baudRates is the fixed set of rates a Transport accepts, ascending, with 0
// (unset/custom) last.
var baudRates = [...]int{
	50, 75, 110, 134, 150,
	200, 300, 600, 1200, 1800,
	2400, 4800, 9600, 19200, 38400,
	57600, 115200, 230400, 460800, 500000,
	576000, 921600, 1000000, 1152000, 1500000,
	2000000, 2500000, 3000000, 3500000, 4000000,
	0,
}

// ValidBaud reports whether rate is in the baud table.
func ValidBaud(rate int) bool {
	for _, r := range baudRates {
		if r == rate {
			return true
		}
	}
	return false
}

// BaudRates returns a copy of the baud table.
func BaudRates() []int {
	out := make([]int, len(baudRates))
	copy(out, baudRates[:])
	return out
}
