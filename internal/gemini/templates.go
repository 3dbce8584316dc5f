package gemini

// Months in processing order. Generation always walks this list start to
// finish; draft and final folders are keyed by these names.
var Months = []string{
	"January", "February", "March", "April",
	"May", "June", "July", "August",
	"September", "October", "November", "December",
}

// TemplateFiles maps each month to its calendar template image under the
// configured templates directory.
var TemplateFiles = map[string]string{
	"January":   "Jan.jpg",
	"February":  "Feb.jpg",
	"March":     "Mar.jpg",
	"April":     "Apr.jpg",
	"May":       "May.jpg",
	"June":      "Jun.jpg",
	"July":      "Jul.jpg",
	"August":    "Aug.jpg",
	"September": "Sep.jpg",
	"October":   "Oct.jpg",
	"November":  "Nov.jpg",
	"December":  "Dec.jpg",
}

// CropBox is the pixel rectangle inside a template where the person to
// replace sits. These values are calibrated against the template artwork and
// must not be derived or adjusted at runtime.
type CropBox struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

var CropBoxes = map[string]CropBox{
	"January":   {600, 130, 970, 875},
	"February":  {600, 130, 1050, 875},
	"March":     {590, 110, 1080, 875},
	"April":     {550, 130, 1000, 875},
	"May":       {550, 140, 1070, 875},
	"June":      {650, 125, 1060, 875},
	"July":      {640, 185, 1000, 875},
	"August":    {640, 160, 1050, 875},
	"September": {640, 170, 1020, 875},
	"October":   {520, 110, 1020, 875},
	"November":  {630, 160, 1050, 875},
	"December":  {660, 130, 1050, 875},
}

// IsMonth reports whether name is one of the twelve month labels.
func IsMonth(name string) bool {
	_, ok := CropBoxes[name]
	return ok
}
