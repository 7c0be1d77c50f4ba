package enrich

import (
	"encoding/binary"
)

// GPSResult is the outcome of GPS extraction. Lat/Lon are decimal degrees,
// only meaningful when HasGPS is true.
type GPSResult struct {
	HasGPS bool
	Lat    float64
	Lon    float64
}

// EXIF tag numbers used for location.
const (
	tagGPSInfoIFD     = 0x8825
	tagGPSLatitudeRef = 0x0001
	tagGPSLatitude    = 0x0002
	tagGPSLongitudeRef = 0x0003
	tagGPSLongitude   = 0x0004
)

// TIFF field types.
const (
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5
)

// ExtractGPS parses the EXIF metadata embedded in image bytes and returns a
// decimal coordinate. Missing GPS tags are the expected common case, not an
// error; every malformed-metadata path likewise degrades to HasGPS=false.
func ExtractGPS(data []byte) GPSResult {
	none := GPSResult{HasGPS: false}

	tiff := findTIFF(data)
	if tiff == nil {
		return none
	}

	byteOrder, ifd0, ok := parseTIFFHeader(tiff)
	if !ok {
		return none
	}

	gpsOffset, ok := findGPSIFD(tiff, byteOrder, ifd0)
	if !ok {
		return none
	}

	lat, latOK := readDMS(tiff, byteOrder, gpsOffset, tagGPSLatitude)
	latRef, latRefOK := readRef(tiff, byteOrder, gpsOffset, tagGPSLatitudeRef)
	lon, lonOK := readDMS(tiff, byteOrder, gpsOffset, tagGPSLongitude)
	lonRef, lonRefOK := readRef(tiff, byteOrder, gpsOffset, tagGPSLongitudeRef)
	if !latOK || !latRefOK || !lonOK || !lonRefOK {
		return none
	}

	if latRef != 'N' {
		lat = -lat
	}
	if lonRef != 'E' {
		lon = -lon
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return none
	}

	return GPSResult{HasGPS: true, Lat: lat, Lon: lon}
}

// findTIFF locates the TIFF block: either the payload of a JPEG APP1 Exif
// segment, or the input itself when it already starts with a TIFF header.
func findTIFF(data []byte) []byte {
	if len(data) >= 4 && (string(data[:4]) == "II*\x00" || string(data[:4]) == "MM\x00*") {
		return data
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil
	}

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			return nil
		}
		marker := data[pos+1]
		switch {
		case marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			pos += 2
			continue
		case marker == 0xDA || marker == 0xD9:
			// Entropy-coded data or end of image; no Exif segment found.
			return nil
		}

		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if length < 2 || pos+2+length > len(data) {
			return nil
		}
		segment := data[pos+4 : pos+2+length]
		if marker == 0xE1 && len(segment) > 6 && string(segment[:6]) == "Exif\x00\x00" {
			return segment[6:]
		}
		pos += 2 + length
	}
	return nil
}

func parseTIFFHeader(tiff []byte) (binary.ByteOrder, uint32, bool) {
	if len(tiff) < 8 {
		return nil, 0, false
	}
	var byteOrder binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		byteOrder = binary.LittleEndian
	case "MM":
		byteOrder = binary.BigEndian
	default:
		return nil, 0, false
	}
	if byteOrder.Uint16(tiff[2:4]) != 42 {
		return nil, 0, false
	}
	return byteOrder, byteOrder.Uint32(tiff[4:8]), true
}

// findGPSIFD walks IFD0 looking for the GPSInfo pointer tag.
func findGPSIFD(tiff []byte, byteOrder binary.ByteOrder, ifd0 uint32) (uint32, bool) {
	entry, ok := findEntry(tiff, byteOrder, ifd0, tagGPSInfoIFD)
	if !ok {
		return 0, false
	}
	fieldType := byteOrder.Uint16(entry[2:4])
	if fieldType != typeLong {
		return 0, false
	}
	return byteOrder.Uint32(entry[8:12]), true
}

// findEntry returns the 12-byte IFD entry for tag, or false when absent.
func findEntry(tiff []byte, byteOrder binary.ByteOrder, ifdOffset uint32, tag uint16) ([]byte, bool) {
	offset := int(ifdOffset)
	if offset+2 > len(tiff) {
		return nil, false
	}
	count := int(byteOrder.Uint16(tiff[offset : offset+2]))
	for i := 0; i < count; i++ {
		start := offset + 2 + i*12
		if start+12 > len(tiff) {
			return nil, false
		}
		entry := tiff[start : start+12]
		if byteOrder.Uint16(entry[0:2]) == tag {
			return entry, true
		}
	}
	return nil, false
}

// readRef reads a single-character reference tag ('N'/'S'/'E'/'W'). ASCII
// values up to four bytes are stored inline in the entry.
func readRef(tiff []byte, byteOrder binary.ByteOrder, ifdOffset uint32, tag uint16) (byte, bool) {
	entry, ok := findEntry(tiff, byteOrder, ifdOffset, tag)
	if !ok {
		return 0, false
	}
	if byteOrder.Uint16(entry[2:4]) != typeASCII {
		return 0, false
	}
	count := byteOrder.Uint32(entry[4:8])
	if count == 0 {
		return 0, false
	}
	if count <= 4 {
		return entry[8], true
	}
	offset := int(byteOrder.Uint32(entry[8:12]))
	if offset >= len(tiff) {
		return 0, false
	}
	return tiff[offset], true
}

// readDMS reads a degree/minute/second rational triple and converts it to
// decimal degrees. The rational values stay exact until the final division.
func readDMS(tiff []byte, byteOrder binary.ByteOrder, ifdOffset uint32, tag uint16) (float64, bool) {
	entry, ok := findEntry(tiff, byteOrder, ifdOffset, tag)
	if !ok {
		return 0, false
	}
	if byteOrder.Uint16(entry[2:4]) != typeRational || byteOrder.Uint32(entry[4:8]) != 3 {
		return 0, false
	}
	offset := int(byteOrder.Uint32(entry[8:12]))
	if offset+24 > len(tiff) {
		return 0, false
	}

	var parts [3]float64
	for i := 0; i < 3; i++ {
		num := byteOrder.Uint32(tiff[offset+i*8 : offset+i*8+4])
		den := byteOrder.Uint32(tiff[offset+i*8+4 : offset+i*8+8])
		if den == 0 {
			return 0, false
		}
		parts[i] = float64(num) / float64(den)
	}
	return parts[0] + parts[1]/60.0 + parts[2]/3600.0, true
}
