package domain

// Sign is the canonical romanized identifier of a zodiac constellation.
type Sign string

const (
	SignAries       Sign = "aries"
	SignTaurus      Sign = "taurus"
	SignGemini      Sign = "gemini"
	SignCancer      Sign = "cancer"
	SignLeo         Sign = "leo"
	SignVirgo       Sign = "virgo"
	SignLibra       Sign = "libra"
	SignScorpio     Sign = "scorpio"
	SignSagittarius Sign = "sagittarius"
	SignCapricorn   Sign = "capricorn"
	SignAquarius    Sign = "aquarius"
	SignPisces      Sign = "pisces"
)

// DefaultSign is returned for any token that names no known sign.
const DefaultSign = SignAries

type signInfo struct {
	sign      Sign
	name      string
	dateRange string
}

var signTable = []signInfo{
	{SignAries, "白羊座", "3.21-4.19"},
	{SignTaurus, "金牛座", "4.20-5.20"},
	{SignGemini, "双子座", "5.21-6.21"},
	{SignCancer, "巨蟹座", "6.22-7.22"},
	{SignLeo, "狮子座", "7.23-8.22"},
	{SignVirgo, "处女座", "8.23-9.22"},
	{SignLibra, "天秤座", "9.23-10.23"},
	{SignScorpio, "天蝎座", "10.24-11.22"},
	{SignSagittarius, "射手座", "11.23-12.21"},
	{SignCapricorn, "摩羯座", "12.22-1.19"},
	{SignAquarius, "水瓶座", "1.20-2.18"},
	{SignPisces, "双鱼座", "2.19-3.20"},
}

var (
	signsByID   = make(map[Sign]signInfo, len(signTable))
	signsByName = make(map[string]signInfo, len(signTable))
)

func init() {
	for _, info := range signTable {
		signsByID[info.sign] = info
		signsByName[info.name] = info
	}
}

// Signs returns the twelve signs in canonical order.
func Signs() []Sign {
	out := make([]Sign, 0, len(signTable))
	for _, info := range signTable {
		out = append(out, info.sign)
	}
	return out
}

// ParseSign resolves a token in either naming scheme. Matching is exact.
func ParseSign(token string) (Sign, bool) {
	if info, ok := signsByID[Sign(token)]; ok {
		return info.sign, true
	}
	if info, ok := signsByName[token]; ok {
		return info.sign, true
	}
	return DefaultSign, false
}

// ResolveSign is ParseSign without the membership flag.
func ResolveSign(token string) Sign {
	sign, _ := ParseSign(token)
	return sign
}

// ToOther maps a romanized identifier to its Chinese name and a Chinese name
// to its romanized identifier. Unknown tokens map to the default sign's
// romanized identifier.
func ToOther(token string) string {
	if info, ok := signsByID[Sign(token)]; ok {
		return info.name
	}
	if info, ok := signsByName[token]; ok {
		return string(info.sign)
	}
	return string(DefaultSign)
}

func (s Sign) Valid() bool {
	_, ok := signsByID[s]
	return ok
}

func (s Sign) ChineseName() string {
	return signsByID[s].name
}

// DateRange returns the month.day span the sign covers, e.g. "3.21-4.19".
func (s Sign) DateRange() string {
	return signsByID[s].dateRange
}

func (s Sign) String() string {
	return string(s)
}
