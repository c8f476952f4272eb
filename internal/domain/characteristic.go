package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCharacteristic = errors.New("unknown characteristic")

// Characteristic is the gameplay mode a difficulty belongs to.
type Characteristic uint8

const (
	CharacteristicUnknown Characteristic = iota
	CharacteristicStandard
	CharacteristicOneSaber
	CharacteristicNoArrows
	CharacteristicLightshow
	CharacteristicDegree90
	CharacteristicDegree360
	CharacteristicLawless
)

var characteristicNames = [...]string{
	CharacteristicUnknown:   "Unknown",
	CharacteristicStandard:  "Standard",
	CharacteristicOneSaber:  "OneSaber",
	CharacteristicNoArrows:  "NoArrows",
	CharacteristicLightshow: "Lightshow",
	CharacteristicDegree90:  "Degree90",
	CharacteristicDegree360: "Degree360",
	CharacteristicLawless:   "Lawless",
}

// the map data uses "90Degree" and "360Degree"
var characteristicAliases = map[string]Characteristic{
	"90degree":  CharacteristicDegree90,
	"360degree": CharacteristicDegree360,
}

// ParseCharacteristic matches s case-insensitively against the characteristic
// names and their aliases. Unrecognized text is an error, never Unknown.
func ParseCharacteristic(s string) (Characteristic, error) {
	for c, name := range characteristicNames {
		if strings.EqualFold(s, name) {
			return Characteristic(c), nil
		}
	}
	if c, ok := characteristicAliases[strings.ToLower(s)]; ok {
		return c, nil
	}
	return CharacteristicUnknown, fmt.Errorf("%w: %q", ErrUnknownCharacteristic, s)
}

func (c Characteristic) String() string {
	if int(c) < len(characteristicNames) {
		return characteristicNames[c]
	}
	return fmt.Sprintf("Characteristic(%d)", uint8(c))
}

func (c Characteristic) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Characteristic) UnmarshalText(text []byte) error {
	parsed, err := ParseCharacteristic(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
