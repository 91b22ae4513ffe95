package contest

import "strconv"

const (
	// SlotsPerContest is the number of box tokens minted per contest grid
	SlotsPerContest = 100
	// TokenIDMultiplier must stay >= SlotsPerContest so contest ranges never overlap
	TokenIDMultiplier = 100
)

type ID int

// Active is the allow-list of contests whose boxes count towards verification.
var Active = []ID{20, 21, 22}

// TokenID returns the token id of slot index in contest c.
func TokenID(c ID, index int) int {
	return int(c)*TokenIDMultiplier + index
}

// TokenIDs returns every slot token of the given contests, in contest then slot order.
func TokenIDs(contests []ID) []int {
	ids := make([]int, 0, len(contests)*SlotsPerContest)
	for _, c := range contests {
		for i := 0; i < SlotsPerContest; i++ {
			ids = append(ids, TokenID(c, i))
		}
	}
	return ids
}

func TokenIDStrings(contests []ID) []string {
	ids := TokenIDs(contests)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(id)
	}
	return out
}

func Ints(contests []ID) []int {
	out := make([]int, len(contests))
	for i, c := range contests {
		out[i] = int(c)
	}
	return out
}
