// Package dataset reads the utterance catalog of the loudspeaker dataset and
// repairs speaker_0m recordings that were saved as MP4/M4A under a .wav name.
//
// Layout under the dataset root:
//
//	metadata.csv            utt_id, condition, distance_m, text, relpath
//	audio/human/*.wav
//	audio/speaker_0m/*.wav
//	audio/speaker_3m/*.wav
package dataset
