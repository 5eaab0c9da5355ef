// Package annotation loads the immutable speaker/video annotation asset.
//
// The asset is a JSON array indexed by speaker; each element lists the videos
// attributed to that speaker together with the start/stop windows of speech
// inside each video. Segment i of a video in the cache corresponds to window
// i of its annotation. Load builds the video-to-speaker inverted index once;
// the resulting Store is never mutated and is safe for concurrent reads.
//
// Any failure to read or validate the asset is reported as
// services.ErrAssetLoad: nothing else in voxcache can run without it.
package annotation
