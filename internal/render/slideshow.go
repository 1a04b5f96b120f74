package render

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"reelforge/internal/assets"
	"reelforge/internal/captions"
	"reelforge/internal/services"
	"reelforge/internal/timeline"
)

// slide is the template model for one slideshow frame.
type slide struct {
	ImageData template.URL
	Caption   string
	Overlay   string
	Duration  float64
}

type slideshowModel struct {
	Title  string
	Slides []slide
}

// WriteSlideshow generates a self-contained HTML slideshow for the timeline:
// every scene's image inlined as a data URI, advanced by a client-side timer
// with play/pause and prev/next controls. Video assets are represented by
// their caption text since the file cannot be inlined meaningfully.
func WriteSlideshow(tl *timeline.Timeline, dest string) error {
	model := slideshowModel{Title: tl.Title}
	for _, entry := range tl.Entries {
		s := slide{
			Caption:  spokenText(entry.Captions),
			Overlay:  overlayText(entry.Captions),
			Duration: entry.Scene.Duration(),
		}
		if s.Caption == "" {
			s.Caption = entry.Scene.VisualDirection
		}
		if isStillImage(entry.Asset.Type) {
			uri, err := imageDataURI(entry.Asset)
			if err != nil {
				return err
			}
			s.ImageData = uri
		}
		model.Slides = append(model.Slides, s)
	}
	if len(model.Slides) == 0 {
		return services.Wrap(services.ErrValidation, "render", "slideshow", "timeline has no entries", nil)
	}

	f, err := os.Create(dest)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "slideshow", fmt.Sprintf("create %s", dest), err)
	}
	if err := slideshowTemplate.Execute(f, model); err != nil {
		f.Close()
		os.Remove(dest)
		return services.Wrap(services.ErrExternalTool, "render", "slideshow", "execute template", err)
	}
	if err := f.Close(); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "slideshow", fmt.Sprintf("close %s", dest), err)
	}
	return nil
}

func imageDataURI(asset assets.Asset) (template.URL, error) {
	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "render", "slideshow",
			fmt.Sprintf("read asset %s", asset.Path), err)
	}
	mime := "image/jpeg"
	if strings.EqualFold(filepath.Ext(asset.Path), ".png") {
		mime = "image/png"
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}

func spokenText(segments []captions.Segment) string {
	var parts []string
	for _, segment := range segments {
		if segment.Kind == captions.KindSpoken {
			parts = append(parts, segment.Text)
		}
	}
	return strings.Join(parts, " ")
}

func overlayText(segments []captions.Segment) string {
	for _, segment := range segments {
		if segment.Kind == captions.KindOverlay {
			return segment.Text
		}
	}
	return ""
}

var slideshowTemplate = template.Must(template.New("slideshow").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; background: #111; color: #eee; font-family: sans-serif; }
  .frame { max-width: 480px; margin: 0 auto; text-align: center; }
  .slide { display: none; }
  .slide.active { display: block; }
  .slide img { width: 100%; aspect-ratio: 9 / 16; object-fit: cover; }
  .placeholder { width: 100%; aspect-ratio: 9 / 16; display: flex; align-items: center; justify-content: center; background: #333; }
  .caption { padding: 0.5em 1em; min-height: 3em; }
  .overlay { font-weight: bold; color: #ffd54f; }
  .controls { padding: 1em; }
  .controls button { margin: 0 0.25em; padding: 0.5em 1em; }
</style>
</head>
<body>
<div class="frame">
  <h1>{{.Title}}</h1>
  {{range $i, $s := .Slides}}
  <div class="slide{{if eq $i 0}} active{{end}}" data-duration="{{$s.Duration}}">
    {{if $s.ImageData}}<img src="{{$s.ImageData}}" alt="">{{else}}<div class="placeholder"><p>{{$s.Caption}}</p></div>{{end}}
    <div class="caption"><p>{{$s.Caption}}</p>{{if $s.Overlay}}<p class="overlay">{{$s.Overlay}}</p>{{end}}</div>
  </div>
  {{end}}
  <div class="controls">
    <button id="prev">&#9664;</button>
    <button id="toggle">Pause</button>
    <button id="next">&#9654;</button>
  </div>
</div>
<script>
(function () {
  var slides = document.querySelectorAll('.slide');
  var current = 0;
  var playing = true;
  var timer = null;

  function show(index) {
    slides[current].classList.remove('active');
    current = (index + slides.length) % slides.length;
    slides[current].classList.add('active');
    schedule();
  }

  function schedule() {
    clearTimeout(timer);
    if (!playing) return;
    var seconds = parseFloat(slides[current].dataset.duration) || 5;
    timer = setTimeout(function () { show(current + 1); }, seconds * 1000);
  }

  document.getElementById('prev').addEventListener('click', function () { show(current - 1); });
  document.getElementById('next').addEventListener('click', function () { show(current + 1); });
  document.getElementById('toggle').addEventListener('click', function () {
    playing = !playing;
    this.textContent = playing ? 'Pause' : 'Play';
    schedule();
  });

  schedule();
})();
</script>
</body>
</html>
`))
