// Package analysis runs the single-utterance analysis: it loads one
// utterance in every recording condition through analyze.py, optionally
// equalized and transcribed, and inspects the returned WAV clips.
package analysis
