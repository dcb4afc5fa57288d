package assets

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/golang/glog"
	"github.com/klauspost/compress/zstd"

	"github.com/physlab/physview.go/pkg/sim/engine"
)

// UploadedRobotName is the placeholder used when an uploaded file set
// carries no directory structure to derive a name from.
const UploadedRobotName = "uploaded_robot"

// robotCandidates are the definition filenames tried, in order, for a
// predefined robot. The first successful fetch wins.
var robotCandidates = []string{"%name%.xml", "robot.xml", "main.xml"}

// Registry resolves robot and environment identifiers to file sets and
// stages them into the engine's virtual filesystem. Cleanup removes only
// local bookkeeping; staged virtual files are left for the engine to
// reclaim on remount.
type Registry struct {
	Fetcher Fetcher

	fs     *engine.FileSystem
	staged map[string]Origin
}

// NewRegistry creates a registry staging into fsys.
func NewRegistry(fsys *engine.FileSystem, fetcher Fetcher) *Registry {
	return &Registry{
		Fetcher: fetcher,
		fs:      fsys,
		staged:  make(map[string]Origin),
	}
}

// LoadPredefinedRobot resolves a robot by name under basePath. Candidate
// definition filenames are tried in order; a failed candidate is soft
// (logged, next candidate tried), an exhausted candidate list is hard.
// The auxiliary objects file is optional; its absence is not an error.
func (r *Registry) LoadPredefinedRobot(ctx context.Context, name, basePath string) (*RobotDescriptor, error) {
	var definition []byte
	var tried []string
	for _, candidate := range robotCandidates {
		file := strings.ReplaceAll(candidate, "%name%", name)
		loc := path.Join(basePath, name, file)
		data, err := r.Fetcher.Fetch(ctx, loc)
		if err != nil {
			glog.V(2).Infof("robot %s: candidate %s failed: %v", name, loc, err)
			tried = append(tried, loc)
			continue
		}
		definition = data
		break
	}
	if definition == nil {
		return nil, &NotFoundError{Name: name, Tried: tried}
	}

	desc := &RobotDescriptor{Name: name, Definition: definition, Origin: OriginPredefined}
	objLoc := path.Join(basePath, name, engine.ObjectsFile)
	if objects, err := r.Fetcher.Fetch(ctx, objLoc); err == nil {
		desc.Objects = objects
	} else {
		glog.V(2).Infof("robot %s: no objects file at %s", name, objLoc)
	}
	return desc, nil
}

// LoadUploadedRobot classifies an uploaded file set into a descriptor.
// An .xml whose filename contains "object" (any case) is the objects
// definition; the first other .xml becomes the robot definition and any
// later one is ignored. Files under a meshes/ or mesh/ segment are
// captured as blobs keyed relative to that segment.
func (r *Registry) LoadUploadedRobot(files []UploadFile) (*RobotDescriptor, error) {
	desc := &RobotDescriptor{
		Name:   UploadedRobotName,
		Meshes: make(map[string][]byte),
		Origin: OriginUploaded,
	}
	named := false
	for _, f := range files {
		p := strings.Trim(f.Path, "/")
		if !named {
			if i := strings.IndexByte(p, '/'); i > 0 {
				desc.Name = p[:i]
				named = true
			}
		}
		if rel, ok := meshRelPath(p); ok {
			desc.Meshes[rel] = f.Data
			continue
		}
		base := strings.ToLower(path.Base(p))
		if !strings.HasSuffix(base, ".xml") {
			continue
		}
		if strings.Contains(base, "object") {
			if desc.Objects == nil {
				desc.Objects = f.Data
			}
			continue
		}
		if desc.Definition == nil {
			desc.Definition = f.Data
		}
	}
	if desc.Definition == nil {
		return nil, &MissingDefinitionError{Name: desc.Name}
	}
	return desc, nil
}

// meshRelPath returns the portion of p after the first meshes/ or mesh/
// segment, if any.
func meshRelPath(p string) (string, bool) {
	segs := strings.Split(p, "/")
	for i, seg := range segs[:len(segs)-1] {
		switch strings.ToLower(seg) {
		case "meshes", "mesh":
			return path.Join(segs[i+1:]...), true
		}
	}
	return "", false
}

// Stage writes a resolved robot into the virtual filesystem under its
// name-derived prefix. Restaging replaces all prior content for the
// name, leaving no stale siblings.
func (r *Registry) Stage(desc *RobotDescriptor) error {
	base := desc.Name
	if err := r.fs.RemoveAll(base); err != nil {
		return err
	}
	if err := r.fs.WriteFile(base+"/"+base+".xml", desc.Definition); err != nil {
		return err
	}
	if desc.Objects != nil {
		if err := r.fs.WriteFile(base+"/"+engine.ObjectsFile, desc.Objects); err != nil {
			return err
		}
	}
	for rel, data := range desc.Meshes {
		if err := r.fs.WriteFile(base+"/meshes/"+rel, data); err != nil {
			return err
		}
	}
	r.staged[desc.Name] = desc.Origin
	glog.Infof("staged robot %s (%d meshes)", desc.Name, len(desc.Meshes))
	return nil
}

// StageEnvironment fetches and stages an environment: the scene file
// and, when configured, a zstd-compressed tar bundle of assets unpacked
// next to it. A failed asset bundle is logged and skipped; a failed
// scene fetch is hard. Partially staged content from a failed load is
// not rolled back.
func (r *Registry) StageEnvironment(ctx context.Context, env EnvironmentDescriptor) error {
	scene, err := r.Fetcher.Fetch(ctx, env.Scene)
	if err != nil {
		return err
	}
	base := env.Name
	if err := r.fs.RemoveAll(base); err != nil {
		return err
	}
	if err := r.fs.WriteFile(base+"/"+base+".xml", scene); err != nil {
		return err
	}
	if env.Assets != "" {
		bundle, err := r.Fetcher.Fetch(ctx, env.Assets)
		if err != nil {
			glog.Warningf("environment %s: asset bundle skipped: %v", env.Name, err)
		} else if err := r.stageBundle(base, bundle); err != nil {
			return err
		}
	}
	r.staged[env.Name] = OriginPredefined
	glog.Infof("staged environment %s", env.Name)
	return nil
}

// stageBundle unpacks a .tar.zst bundle under base/assets/.
func (r *Registry) stageBundle(base string, bundle []byte) error {
	dec, err := zstd.NewReader(bytes.NewReader(bundle))
	if err != nil {
		return err
	}
	defer dec.Close()
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		name := path.Clean(strings.Trim(hdr.Name, "/"))
		if name == "." || strings.HasPrefix(name, "..") {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return err
		}
		if err := r.fs.WriteFile(base+"/assets/"+name, data); err != nil {
			return err
		}
	}
}

// Cleanup forgets the registry bookkeeping for name. Staged virtual
// files are deliberately left in place; the engine reclaims them when
// the filesystem is remounted.
func (r *Registry) Cleanup(name string) {
	delete(r.staged, name)
	glog.V(2).Infof("cleaned up bookkeeping for %s", name)
}

// IsStaged reports whether name has been staged and not cleaned up.
func (r *Registry) IsStaged(name string) bool {
	_, ok := r.staged[name]
	return ok
}
