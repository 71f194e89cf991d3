// Package convert orchestrates metadata lookup, audio conversion, and one-shot
// downloads on top of the yt-dlp client and the audio store.
//
// Service is transport-agnostic: the HTTP layer and the CLI both call it and
// render its Info and Result values in their own way.
package convert
