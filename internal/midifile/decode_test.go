package midifile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func write(t *testing.T, tpq uint16, build func(*smf.Track)) []byte {
	t.Helper()
	var track smf.Track
	build(&track)
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(tpq)
	s.NoRunningStatus = true
	require.NoError(t, s.Add(track))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestRead(t *testing.T) {
	tempo, err := TempoEvent(90)
	require.NoError(t, err)
	sig, err := TimeSignatureEvent(3, 4)
	require.NoError(t, err)

	data := write(t, 480, func(tr *smf.Track) {
		tr.Add(0, tempo)
		tr.Add(0, sig)
		tr.Add(0, midi.NoteOn(2, 0x40, 0x50))
		tr.Add(240, midi.NoteOff(2, 0x40))
	})

	file, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint16(0), file.Format)
	assert.Equal(t, uint16(480), file.TicksPerQuarter)
	require.Len(t, file.Tracks, 1)

	track := file.Tracks[0]
	require.Len(t, track, 5)

	assert.Equal(t, KindTempo, track[0].Kind)
	assert.Equal(t, MicrosecondsPerQuarter(90), track[0].MicrosecondsPerQuarter)
	assert.Empty(t, track[0].Raw)

	assert.Equal(t, KindTimeSignature, track[1].Kind)
	assert.Equal(t, uint8(3), track[1].Numerator)
	assert.Equal(t, 4, track[1].Denominator)

	assert.Equal(t, KindNoteOn, track[2].Kind)
	assert.Equal(t, uint8(2), track[2].Channel)
	assert.Equal(t, uint8(0x40), track[2].Key)
	assert.Equal(t, uint8(0x50), track[2].Velocity)
	assert.Equal(t, uint64(0), track[2].Tick)

	assert.Equal(t, KindNoteOff, track[3].Kind)
	assert.Equal(t, uint64(240), track[3].Tick)
	assert.Equal(t, uint32(240), track[3].Delta)

	assert.Equal(t, KindEndOfTrack, track[4].Kind)
	assert.Equal(t, uint64(240), track[4].Tick)

	assert.Len(t, file.NoteOns(), 1)
}

func TestRead_TempoKeepsMicroseconds(t *testing.T) {
	for _, bpm := range []int{4, 95, 120, 140, 333} {
		tempo, err := TempoEvent(bpm)
		require.NoError(t, err)

		file, err := Read(bytes.NewReader(write(t, 96, func(tr *smf.Track) { tr.Add(0, tempo) })))
		require.NoError(t, err)
		require.NotEmpty(t, file.Tracks[0])
		assert.Equal(t, MicrosecondsPerQuarter(bpm), file.Tracks[0][0].MicrosecondsPerQuarter, "%d bpm", bpm)
	}
}

func TestRead_LargestDenominator(t *testing.T) {
	sig, err := TimeSignatureEvent(7, MaxDenominator)
	require.NoError(t, err)

	file, err := Read(bytes.NewReader(write(t, 96, func(tr *smf.Track) { tr.Add(0, sig) })))
	require.NoError(t, err)
	ev := file.Tracks[0][0]
	assert.Equal(t, KindTimeSignature, ev.Kind)
	assert.Equal(t, uint8(7), ev.Numerator)
	assert.Equal(t, MaxDenominator, ev.Denominator)
}

func TestRead_OtherMessagesKeepRawBytes(t *testing.T) {
	file, err := Read(bytes.NewReader(write(t, 96, func(tr *smf.Track) {
		tr.Add(0, midi.ControlChange(0, 7, 100))
	})))
	require.NoError(t, err)
	ev := file.Tracks[0][0]
	assert.Equal(t, KindOther, ev.Kind)
	assert.Equal(t, "b00764", ev.Raw)
}

func TestReadRejectsGarbage(t *testing.T) {
	file, err := Read(bytes.NewReader([]byte("not a midi file")))
	assert.Error(t, err)
	assert.Nil(t, file)
}
