package dataset

import "testing"

func TestFixSAVPaths(t *testing.T) {
	type pathCase struct {
		Video     string
		Anno      string
		WantVideo string
		WantAnno  string
	}

	cases := []pathCase{
		{
			Video:     "./data/video_datas/sam_v_full/sav_000/sav_train/sav_000/sav_000002.mp4",
			Anno:      "./data/video_datas/sam_v_full/sav_000/sav_train/sav_000/sav_000002_manual.json",
			WantVideo: "./data/video_datas/sam_v_full/sav_train/sav_000/sav_000002.mp4",
			WantAnno:  "./data/video_datas/sam_v_full/sav_train/sav_000/sav_000002_manual.json",
		},
		{
			// already correct, no duplicate segment
			Video:     "./data/video_datas/sam_v_full/sav_train/sav_000/sav_000002.mp4",
			Anno:      "./annos/sav_train/sav_000/sav_000002.json",
			WantVideo: "./data/video_datas/sam_v_full/sav_train/sav_000/sav_000002.mp4",
			WantAnno:  "./annos/sav_train/sav_000/sav_000002.json",
		},
		{
			// unrelated dataset passes through
			Video:     "./data/other/video.mp4",
			Anno:      "./data/other/video.json",
			WantVideo: "./data/other/video.mp4",
			WantAnno:  "./data/other/video.json",
		},
		{
			// neighboring segments differ, nothing to repair
			Video:     "./data/sav_001/sav_train/sav_000/clip.mp4",
			Anno:      "./data/sav_001/sav_train/sav_000/clip.json",
			WantVideo: "./data/sav_001/sav_train/sav_000/clip.mp4",
			WantAnno:  "./data/sav_001/sav_train/sav_000/clip.json",
		},
	}

	for _, c := range cases {
		video, anno, err := FixSAVPaths(c.Video, c.Anno)
		if err != nil {
			t.Fatalf("%s: %v", c.Video, err)
		}
		if video != c.WantVideo {
			t.Errorf("video: got %q, want %q", video, c.WantVideo)
		}
		if anno != c.WantAnno {
			t.Errorf("anno: got %q, want %q", anno, c.WantAnno)
		}
	}
}

func TestFixSAVPathsMultipleTrainDirs(t *testing.T) {
	_, _, err := FixSAVPaths("./sav_train/x/sav_train/y.mp4", "./a.json")
	if err == nil {
		t.Fatal("expected error for multiple sav_train segments")
	}
}
