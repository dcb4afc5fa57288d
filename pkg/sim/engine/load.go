package engine

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// DefaultTimestep is used when the model definition does not declare one.
const DefaultTimestep = 0.002

// ObjectsFile is the auxiliary definition merged into a scene when
// present next to the main definition.
const ObjectsFile = "objects.xml"

type xmlModel struct {
	Name   string `xml:"name,attr"`
	Option struct {
		Timestep string `xml:"timestep,attr"`
	} `xml:"option"`
	Bodies    []xmlBody     `xml:"body"`
	Actuators []xmlActuator `xml:"actuator"`
	Lights    []xmlLight    `xml:"light"`
}

type xmlBody struct {
	Name   string     `xml:"name,attr"`
	Parent string     `xml:"parent,attr"`
	Pos    string     `xml:"pos,attr"`
	Quat   string     `xml:"quat,attr"`
	Mass   string     `xml:"mass,attr"`
	Mocap  string     `xml:"mocap,attr"`
	Joints []xmlJoint `xml:"joint"`
}

type xmlJoint struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type xmlActuator struct {
	Name      string `xml:"name,attr"`
	Joint     string `xml:"joint,attr"`
	CtrlRange string `xml:"ctrlrange,attr"`
	Limited   string `xml:"limited,attr"`
}

type xmlLight struct {
	Pos string `xml:"pos,attr"`
	Dir string `xml:"dir,attr"`
}

// ParseModel builds a Model from one or more XML definition documents.
// Later documents append bodies, actuators and lights to the first; the
// scene name and timestep come from the first document.
func ParseModel(name string, docs ...[]byte) (*Model, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("engine: no definition documents")
	}
	var merged xmlModel
	for n, doc := range docs {
		var xm xmlModel
		if err := xml.Unmarshal(doc, &xm); err != nil {
			return nil, fmt.Errorf("engine: parse definition %d: %w", n, err)
		}
		if n == 0 {
			merged = xm
		} else {
			merged.Bodies = append(merged.Bodies, xm.Bodies...)
			merged.Actuators = append(merged.Actuators, xm.Actuators...)
			merged.Lights = append(merged.Lights, xm.Lights...)
		}
	}
	return buildModel(name, &merged)
}

// LoadScene reads the staged definition for name (plus the optional
// objects file) and returns a fresh model/data pair.
func LoadScene(fsys *FileSystem, name string) (*Model, *Data, error) {
	def, err := fsys.ReadFile(name + "/" + name + ".xml")
	if err != nil {
		return nil, nil, fmt.Errorf("engine: scene %s: %w", name, err)
	}
	docs := [][]byte{def}
	if objPath := name + "/" + ObjectsFile; fsys.Exists(objPath) {
		obj, err := fsys.ReadFile(objPath)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, obj)
	}
	m, err := ParseModel(name, docs...)
	if err != nil {
		return nil, nil, err
	}
	return m, m.MakeData(), nil
}

func buildModel(name string, xm *xmlModel) (*Model, error) {
	m := &Model{name: name, timestep: DefaultTimestep}
	if xm.Option.Timestep != "" {
		ts, err := strconv.ParseFloat(xm.Option.Timestep, 64)
		if err != nil || ts <= 0 {
			return nil, fmt.Errorf("engine: bad timestep %q", xm.Option.Timestep)
		}
		m.timestep = ts
	}

	bodyIndex := make(map[string]int, len(xm.Bodies))
	var names []byte
	addName := func(s string) int32 {
		adr := int32(len(names))
		names = append(names, []byte(s)...)
		names = append(names, 0)
		return adr
	}

	for i, xb := range xm.Bodies {
		if xb.Name == "" {
			return nil, fmt.Errorf("engine: body %d has no name", i)
		}
		if _, dup := bodyIndex[xb.Name]; dup {
			return nil, fmt.Errorf("engine: duplicate body %q", xb.Name)
		}
		bodyIndex[xb.Name] = i
		m.bodyNameAdr = append(m.bodyNameAdr, addName(xb.Name))

		pos, err := parseVec3(xb.Pos)
		if err != nil {
			return nil, fmt.Errorf("engine: body %q pos: %w", xb.Name, err)
		}
		quat, err := parseQuat(xb.Quat)
		if err != nil {
			return nil, fmt.Errorf("engine: body %q quat: %w", xb.Name, err)
		}
		mass := 1.0
		if xb.Mass != "" {
			if mass, err = strconv.ParseFloat(xb.Mass, 64); err != nil || mass <= 0 {
				return nil, fmt.Errorf("engine: body %q mass %q", xb.Name, xb.Mass)
			}
		}
		m.bodyPos = append(m.bodyPos, pos...)
		m.bodyQuat = append(m.bodyQuat, quat...)
		m.bodyMass = append(m.bodyMass, mass)

		mocap := strings.EqualFold(xb.Mocap, "true")
		if mocap && len(xb.Joints) > 0 {
			return nil, fmt.Errorf("engine: mocap body %q cannot have joints", xb.Name)
		}
		if mocap {
			m.bodyMocap = append(m.bodyMocap, int32(m.nmocap))
			m.nmocap++
		} else {
			m.bodyMocap = append(m.bodyMocap, -1)
		}

		m.bodyJnt = append(m.bodyJnt, -1)
		for _, xj := range xb.Joints {
			jt, err := parseJointType(xj.Type)
			if err != nil {
				return nil, fmt.Errorf("engine: body %q: %w", xb.Name, err)
			}
			j := len(m.jntType)
			if m.bodyJnt[i] < 0 {
				m.bodyJnt[i] = int32(j)
			}
			m.jntType = append(m.jntType, jt)
			m.jntBody = append(m.jntBody, int32(i))
			m.jntQPosAdr = append(m.jntQPosAdr, int32(m.nq))
			m.jntDofAdr = append(m.jntDofAdr, int32(m.nv))
			m.nq += jt.numPos()
			m.nv += jt.numVel()
		}
	}

	// resolve parent and kinematic-root indirection
	for _, xb := range xm.Bodies {
		if xb.Parent == "" {
			m.bodyParent = append(m.bodyParent, -1)
			continue
		}
		parent, ok := bodyIndex[xb.Parent]
		if !ok {
			return nil, fmt.Errorf("engine: body %q: unknown parent %q", xb.Name, xb.Parent)
		}
		m.bodyParent = append(m.bodyParent, int32(parent))
	}
	for i := range xm.Bodies {
		root := i
		for m.bodyParent[root] >= 0 {
			root = int(m.bodyParent[root])
		}
		m.bodyRoot = append(m.bodyRoot, int32(root))
	}

	// joints resolved by name for actuator transmission
	jointIndex := make(map[string]int)
	j := 0
	for _, xb := range xm.Bodies {
		for _, xj := range xb.Joints {
			if xj.Name != "" {
				jointIndex[xj.Name] = j
			}
			j++
		}
	}

	for _, xa := range xm.Actuators {
		if xa.Name == "" {
			return nil, fmt.Errorf("engine: actuator with no name")
		}
		jnt, ok := jointIndex[xa.Joint]
		if !ok {
			return nil, fmt.Errorf("engine: actuator %q: unknown joint %q", xa.Name, xa.Joint)
		}
		m.actNameAdr = append(m.actNameAdr, addName(xa.Name))
		m.actJnt = append(m.actJnt, int32(jnt))
		lo, hi := 0.0, 0.0
		if xa.CtrlRange != "" {
			vals, err := parseFloats(xa.CtrlRange, 2)
			if err != nil {
				return nil, fmt.Errorf("engine: actuator %q ctrlrange: %w", xa.Name, err)
			}
			lo, hi = vals[0], vals[1]
		}
		m.actRange = append(m.actRange, lo, hi)
		m.actLimited = append(m.actLimited, strings.EqualFold(xa.Limited, "true"))
	}

	for n, xl := range xm.Lights {
		pos, err := parseVec3(xl.Pos)
		if err != nil {
			return nil, fmt.Errorf("engine: light %d pos: %w", n, err)
		}
		dir, err := parseFloatsDefault(xl.Dir, 3, []float64{0, 0, -1})
		if err != nil {
			return nil, fmt.Errorf("engine: light %d dir: %w", n, err)
		}
		m.lightPos = append(m.lightPos, pos...)
		m.lightDir = append(m.lightDir, dir...)
	}

	m.names = names
	return m, nil
}

func parseJointType(s string) (JointType, error) {
	switch strings.ToLower(s) {
	case "", "free":
		return JointFree, nil
	case "hinge":
		return JointHinge, nil
	case "slide":
		return JointSlide, nil
	}
	return 0, fmt.Errorf("unknown joint type %q", s)
}

func parseFloats(s string, n int) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	vals := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func parseFloatsDefault(s string, n int, def []float64) ([]float64, error) {
	if s == "" {
		return def, nil
	}
	return parseFloats(s, n)
}

func parseVec3(s string) ([]float64, error) {
	return parseFloatsDefault(s, 3, []float64{0, 0, 0})
}

func parseQuat(s string) ([]float64, error) {
	return parseFloatsDefault(s, 4, []float64{1, 0, 0, 0})
}
