package assets

import (
	"archive/tar"
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/physlab/physview.go/pkg/sim/engine"
)

// mapFetcher serves content from a map and records requested locations.
type mapFetcher struct {
	files map[string][]byte
	tried []string
}

func (f *mapFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	f.tried = append(f.tried, location)
	if data, ok := f.files[location]; ok {
		return data, nil
	}
	return nil, &NetworkError{Location: location, Err: context.Canceled}
}

func newTestRegistry(t *testing.T, files map[string][]byte) (*Registry, *engine.FileSystem, *mapFetcher) {
	fsys, err := engine.NewFileSystem()
	require.NoError(t, err)
	fetcher := &mapFetcher{files: files}
	return NewRegistry(fsys, fetcher), fsys, fetcher
}

func TestLoadPredefinedRobotCandidates(t *testing.T) {
	reg, _, fetcher := newTestRegistry(t, map[string][]byte{
		"robots/spot/robot.xml":   []byte("<model/>"),
		"robots/spot/objects.xml": []byte("<model name=\"objs\"/>"),
	})
	desc, err := reg.LoadPredefinedRobot(context.Background(), "spot", "robots")
	require.NoError(t, err)
	require.Equal(t, "spot", desc.Name)
	require.Equal(t, []byte("<model/>"), desc.Definition)
	require.NotNil(t, desc.Objects)
	require.Equal(t, OriginPredefined, desc.Origin)

	// the name-derived candidate is tried before the generic ones
	require.Equal(t, "robots/spot/spot.xml", fetcher.tried[0])
	require.Equal(t, "robots/spot/robot.xml", fetcher.tried[1])
}

func TestLoadPredefinedRobotObjectsOptional(t *testing.T) {
	reg, _, _ := newTestRegistry(t, map[string][]byte{
		"robots/spot/spot.xml": []byte("<model/>"),
	})
	desc, err := reg.LoadPredefinedRobot(context.Background(), "spot", "robots")
	require.NoError(t, err)
	require.Nil(t, desc.Objects)
}

func TestLoadPredefinedRobotNotFound(t *testing.T) {
	reg, _, _ := newTestRegistry(t, nil)
	_, err := reg.LoadPredefinedRobot(context.Background(), "spot", "robots")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "spot", nf.Name)
	require.Equal(t, []string{
		"robots/spot/spot.xml",
		"robots/spot/robot.xml",
		"robots/spot/main.xml",
	}, nf.Tried)
}

func TestLoadUploadedRobot(t *testing.T) {
	cases := []struct {
		name    string
		files   []UploadFile
		expName string
		expDef  []byte
		expObjs []byte
		expMesh map[string][]byte
		expErr  bool
	}{
		{
			name: "full set",
			files: []UploadFile{
				{Path: "spot/spot.xml", Data: []byte("def")},
				{Path: "spot/my_objects.xml", Data: []byte("objs")},
				{Path: "spot/meshes/leg/upper.stl", Data: []byte("mesh")},
			},
			expName: "spot",
			expDef:  []byte("def"),
			expObjs: []byte("objs"),
			expMesh: map[string][]byte{"leg/upper.stl": []byte("mesh")},
		},
		{
			name: "objects classified case-insensitively",
			files: []UploadFile{
				{Path: "bot/OBJECTS.XML", Data: []byte("objs")},
				{Path: "bot/main.xml", Data: []byte("def")},
			},
			expName: "bot",
			expDef:  []byte("def"),
			expObjs: []byte("objs"),
			expMesh: map[string][]byte{},
		},
		{
			name: "first definition wins",
			files: []UploadFile{
				{Path: "bot/a.xml", Data: []byte("first")},
				{Path: "bot/b.xml", Data: []byte("second")},
			},
			expName: "bot",
			expDef:  []byte("first"),
			expMesh: map[string][]byte{},
		},
		{
			name: "flat upload gets placeholder name",
			files: []UploadFile{
				{Path: "robot.xml", Data: []byte("def")},
			},
			expName: UploadedRobotName,
			expDef:  []byte("def"),
			expMesh: map[string][]byte{},
		},
		{
			name: "mesh under singular segment",
			files: []UploadFile{
				{Path: "bot/robot.xml", Data: []byte("def")},
				{Path: "bot/mesh/hull.obj", Data: []byte("mesh")},
			},
			expName: "bot",
			expDef:  []byte("def"),
			expMesh: map[string][]byte{"hull.obj": []byte("mesh")},
		},
		{
			name: "no definition",
			files: []UploadFile{
				{Path: "bot/objects.xml", Data: []byte("objs")},
				{Path: "bot/readme.txt", Data: []byte("txt")},
			},
			expErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, _, _ := newTestRegistry(t, nil)
			desc, err := reg.LoadUploadedRobot(tc.files)
			if tc.expErr {
				var missing *MissingDefinitionError
				require.ErrorAs(t, err, &missing)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expName, desc.Name)
			require.Equal(t, tc.expDef, desc.Definition)
			require.Equal(t, tc.expObjs, desc.Objects)
			require.Equal(t, tc.expMesh, desc.Meshes)
			require.Equal(t, OriginUploaded, desc.Origin)
		})
	}
}

func TestStage(t *testing.T) {
	reg, fsys, _ := newTestRegistry(t, nil)
	desc := &RobotDescriptor{
		Name:       "spot",
		Definition: []byte("def"),
		Objects:    []byte("objs"),
		Meshes:     map[string][]byte{"leg/upper.stl": []byte("mesh")},
		Origin:     OriginUploaded,
	}
	require.NoError(t, reg.Stage(desc))
	require.True(t, reg.IsStaged("spot"))

	snap, err := fsys.Snapshot("spot")
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{
		"spot/spot.xml":             []byte("def"),
		"spot/objects.xml":          []byte("objs"),
		"spot/meshes/leg/upper.stl": []byte("mesh"),
	}, snap)
}

func TestStageReplacesPriorContent(t *testing.T) {
	reg, fsys, _ := newTestRegistry(t, nil)
	require.NoError(t, reg.Stage(&RobotDescriptor{
		Name:       "spot",
		Definition: []byte("v1"),
		Meshes:     map[string][]byte{"old.stl": []byte("mesh")},
	}))
	require.NoError(t, reg.Stage(&RobotDescriptor{
		Name:       "spot",
		Definition: []byte("v2"),
	}))

	snap, err := fsys.Snapshot("spot")
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{
		"spot/spot.xml": []byte("v2"),
	}, snap)
}

func makeBundle(t *testing.T, files map[string][]byte) []byte {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	tw := tar.NewWriter(enc)
	for name, data := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(data)),
		}))
		_, err = tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func TestStageEnvironment(t *testing.T) {
	bundle := makeBundle(t, map[string][]byte{"tex/floor.png": []byte("png")})
	reg, fsys, _ := newTestRegistry(t, map[string][]byte{
		"envs/lab.xml":     []byte("<model/>"),
		"envs/lab.tar.zst": bundle,
	})
	env := EnvironmentDescriptor{Name: "lab", Scene: "envs/lab.xml", Assets: "envs/lab.tar.zst"}
	require.NoError(t, reg.StageEnvironment(context.Background(), env))
	require.True(t, reg.IsStaged("lab"))

	snap, err := fsys.Snapshot("lab")
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{
		"lab/lab.xml":              []byte("<model/>"),
		"lab/assets/tex/floor.png": []byte("png"),
	}, snap)
}

func TestStageEnvironmentAssetBundleOptional(t *testing.T) {
	reg, _, _ := newTestRegistry(t, map[string][]byte{
		"envs/lab.xml": []byte("<model/>"),
	})
	env := EnvironmentDescriptor{Name: "lab", Scene: "envs/lab.xml", Assets: "envs/missing.tar.zst"}
	require.NoError(t, reg.StageEnvironment(context.Background(), env))
}

func TestStageEnvironmentSceneRequired(t *testing.T) {
	reg, _, _ := newTestRegistry(t, nil)
	env := EnvironmentDescriptor{Name: "lab", Scene: "envs/lab.xml"}
	require.Error(t, reg.StageEnvironment(context.Background(), env))
}

func TestCleanupKeepsStagedFiles(t *testing.T) {
	reg, fsys, _ := newTestRegistry(t, nil)
	require.NoError(t, reg.Stage(&RobotDescriptor{Name: "spot", Definition: []byte("def")}))
	reg.Cleanup("spot")
	require.False(t, reg.IsStaged("spot"))
	require.True(t, fsys.Exists("spot/spot.xml"))
}
