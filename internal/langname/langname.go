// Package langname maps the 3-letter ISO-639-2 codes found in BDMV
// stream attribute blocks to a display name. The codes that actually
// show up on retail Blu-ray discs are a small, closed set, so a static
// table is enough.
package langname

var names = map[string]string{
	"eng": "English",
	"jpn": "Japanese",
	"fra": "French",
	"deu": "German",
	"ger": "German",
	"spa": "Spanish",
	"ita": "Italian",
	"por": "Portuguese",
	"nld": "Dutch",
	"dut": "Dutch",
	"swe": "Swedish",
	"nor": "Norwegian",
	"dan": "Danish",
	"fin": "Finnish",
	"rus": "Russian",
	"pol": "Polish",
	"ces": "Czech",
	"cze": "Czech",
	"ell": "Greek",
	"gre": "Greek",
	"tur": "Turkish",
	"ara": "Arabic",
	"heb": "Hebrew",
	"hin": "Hindi",
	"tha": "Thai",
	"kor": "Korean",
	"zho": "Chinese",
	"chi": "Chinese",
	"cmn": "Mandarin",
	"yue": "Cantonese",
	"vie": "Vietnamese",
	"ind": "Indonesian",
	"msa": "Malay",
	"und": "Undetermined",
}

// Name returns the display name for a 3-letter language code, or the
// code itself (unchanged) if it is empty or unrecognized.
func Name(code string) string {
	if code == "" {
		return ""
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
