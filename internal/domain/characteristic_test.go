package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCharacteristic(t *testing.T) {
	tests := []struct {
		input string
		want  Characteristic
	}{
		{input: "Standard", want: CharacteristicStandard},
		{input: "standard", want: CharacteristicStandard},
		{input: "ONESABER", want: CharacteristicOneSaber},
		{input: "NoArrows", want: CharacteristicNoArrows},
		{input: "Lightshow", want: CharacteristicLightshow},
		{input: "90Degree", want: CharacteristicDegree90},
		{input: "degree90", want: CharacteristicDegree90},
		{input: "360Degree", want: CharacteristicDegree360},
		{input: "Degree360", want: CharacteristicDegree360},
		{input: "Lawless", want: CharacteristicLawless},
		{input: "Unknown", want: CharacteristicUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCharacteristic(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCharacteristic_Unrecognized(t *testing.T) {
	for _, input := range []string{"", "Legacy", "180Degree", "Standard "} {
		_, err := ParseCharacteristic(input)
		assert.ErrorIs(t, err, ErrUnknownCharacteristic, "input %q", input)
	}
}

func TestCharacteristic_Text(t *testing.T) {
	var zero Characteristic
	assert.Equal(t, CharacteristicUnknown, zero)
	assert.Equal(t, "Degree360", CharacteristicDegree360.String())
	assert.Equal(t, "Characteristic(42)", Characteristic(42).String())

	var c Characteristic
	require.NoError(t, c.UnmarshalText([]byte("90degree")))
	assert.Equal(t, CharacteristicDegree90, c)
	assert.Error(t, c.UnmarshalText([]byte("nope")))

	out, err := CharacteristicLawless.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Lawless", string(out))
}
