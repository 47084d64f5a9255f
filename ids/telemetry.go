package ids

// DecodeTemperature converts the packed wTemperature word of the device
// heartbeat to Celcius.
//
//	bit 15      sign
//	bits 14..11 ignored, their meaning is not documented
//	bits 10..4  integer part
//	bits 3..0   sixteenths
func DecodeTemperature(raw uint16) float64 {
	integer := float64((raw >> 4) & 0x7F)
	frac := float64(raw&0xF) / 16
	t := integer + frac
	if raw&0x8000 != 0 {
		return -t
	}
	return t
}
