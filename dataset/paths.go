package dataset

import (
	"fmt"
	"strings"
)

// FixSAVPaths repairs SA-V annotation paths whose video path carries a
// duplicated shard directory on either side of "sav_train", e.g.
//
//	./data/video_datas/sam_v_full/sav_000/sav_train/sav_000/sav_000002.mp4
//
// becomes
//
//	./data/video_datas/sam_v_full/sav_train/sav_000/sav_000002.mp4
//
// and the same segment is removed from the annotation path. Paths
// without the duplication pass through unchanged. A path containing
// more than one "sav_train" segment is malformed.
func FixSAVPaths(videoPath, annoPath string) (string, string, error) {
	if !strings.Contains(videoPath, "sav_train") {
		return videoPath, annoPath, nil
	}

	parts := strings.Split(videoPath, "/")

	trainIdx := -1
	for i, part := range parts {
		if part == "sav_train" {
			if trainIdx != -1 {
				return "", "", fmt.Errorf("multiple sav_train directories in %q", videoPath)
			}
			trainIdx = i
		}
	}

	if trainIdx < 1 || trainIdx+1 >= len(parts) || parts[trainIdx-1] != parts[trainIdx+1] {
		return videoPath, annoPath, nil
	}

	videoPath = strings.Join(append(parts[:trainIdx-1:trainIdx-1], parts[trainIdx:]...), "/")

	annoParts := strings.Split(annoPath, "/")
	if trainIdx-1 < len(annoParts) {
		annoPath = strings.Join(append(annoParts[:trainIdx-1:trainIdx-1], annoParts[trainIdx:]...), "/")
	}

	return videoPath, annoPath, nil
}
