package floorplan

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// PCD (Point Cloud Data) v0.7 reader and writer. Reading supports ascii and
// binary storage with arbitrary field layouts as long as x, y and z are
// present as 4- or 8-byte floats; extra fields (intensity, rgb, normals) are
// skipped. Writing always emits x y z only.

// pcdField is one column of a PCD record.
type pcdField struct {
	name  string
	size  int
	typ   byte // 'F', 'I' or 'U'
	count int
}

type pcdHeader struct {
	fields []pcdField
	points int
	data   string // "ascii" or "binary"
}

// LoadPCD reads a point cloud from a PCD file.
func LoadPCD(path string) (PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PCD: %w", err)
	}
	defer f.Close()

	cloud, err := ReadPCD(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cloud, nil
}

// SavePCD writes a point cloud to a PCD file. Binary storage is roughly 3x
// smaller and lossless for float32; ascii is human-inspectable.
func SavePCD(path string, cloud PointCloud, binaryData bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating PCD: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WritePCD(w, cloud, binaryData); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadPCD parses a PCD stream into a point cloud.
func ReadPCD(r io.Reader) (PointCloud, error) {
	br := bufio.NewReader(r)

	header, err := readPCDHeader(br)
	if err != nil {
		return nil, err
	}

	xi, yi, zi := -1, -1, -1
	for i, f := range header.fields {
		switch f.name {
		case "x":
			xi = i
		case "y":
			yi = i
		case "z":
			zi = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return nil, fmt.Errorf("PCD is missing x/y/z fields")
	}

	switch header.data {
	case "ascii":
		return readPCDASCII(br, header, xi, yi, zi)
	case "binary":
		return readPCDBinary(br, header, xi, yi, zi)
	default:
		return nil, fmt.Errorf("unsupported PCD data format %q", header.data)
	}
}

// readPCDHeader consumes header lines up to and including the DATA line.
func readPCDHeader(br *bufio.Reader) (pcdHeader, error) {
	h := pcdHeader{points: -1}
	var sizes, counts []int
	var names []string
	var types []byte
	width, height := -1, -1

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return h, fmt.Errorf("reading PCD header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		key := strings.ToUpper(parts[0])
		args := parts[1:]

		switch key {
		case "VERSION", "VIEWPOINT":
			// ignored
		case "FIELDS":
			names = args
		case "SIZE":
			sizes = make([]int, len(args))
			for i, a := range args {
				if sizes[i], err = strconv.Atoi(a); err != nil {
					return h, fmt.Errorf("bad SIZE entry %q", a)
				}
			}
		case "TYPE":
			types = make([]byte, len(args))
			for i, a := range args {
				if len(a) != 1 {
					return h, fmt.Errorf("bad TYPE entry %q", a)
				}
				types[i] = a[0]
			}
		case "COUNT":
			counts = make([]int, len(args))
			for i, a := range args {
				if counts[i], err = strconv.Atoi(a); err != nil {
					return h, fmt.Errorf("bad COUNT entry %q", a)
				}
			}
		case "WIDTH":
			if len(args) == 0 {
				return h, fmt.Errorf("bad WIDTH line %q", line)
			}
			if width, err = strconv.Atoi(args[0]); err != nil {
				return h, fmt.Errorf("bad WIDTH %q", args[0])
			}
		case "HEIGHT":
			if len(args) == 0 {
				return h, fmt.Errorf("bad HEIGHT line %q", line)
			}
			if height, err = strconv.Atoi(args[0]); err != nil {
				return h, fmt.Errorf("bad HEIGHT %q", args[0])
			}
		case "POINTS":
			if len(args) == 0 {
				return h, fmt.Errorf("bad POINTS line %q", line)
			}
			if h.points, err = strconv.Atoi(args[0]); err != nil {
				return h, fmt.Errorf("bad POINTS %q", args[0])
			}
		case "DATA":
			if len(args) != 1 {
				return h, fmt.Errorf("bad DATA line %q", line)
			}
			h.data = strings.ToLower(args[0])
			if len(names) == 0 {
				return h, fmt.Errorf("PCD header has no FIELDS")
			}
			if len(sizes) != len(names) || len(types) != len(names) {
				return h, fmt.Errorf("PCD header FIELDS/SIZE/TYPE mismatch")
			}
			if counts == nil {
				counts = make([]int, len(names))
				for i := range counts {
					counts[i] = 1
				}
			}
			h.fields = make([]pcdField, len(names))
			for i := range names {
				h.fields[i] = pcdField{names[i], sizes[i], types[i], counts[i]}
			}
			if h.points < 0 {
				if width < 0 || height < 0 {
					return h, fmt.Errorf("PCD header has neither POINTS nor WIDTH/HEIGHT")
				}
				h.points = width * height
			}
			return h, nil
		default:
			return h, fmt.Errorf("unknown PCD header line %q", line)
		}
	}
}

func readPCDASCII(br *bufio.Reader, h pcdHeader, xi, yi, zi int) (PointCloud, error) {
	// Column index of each field's first value within an ascii record.
	cols := make([]int, len(h.fields))
	total := 0
	for i, f := range h.fields {
		cols[i] = total
		total += f.count
	}

	cloud := make(PointCloud, 0, h.points)
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() && len(cloud) < h.points {
		vals := strings.Fields(sc.Text())
		if len(vals) == 0 {
			continue
		}
		if len(vals) < total {
			return nil, fmt.Errorf("short PCD record %q", sc.Text())
		}
		var p Point3
		var err error
		if p.X, err = strconv.ParseFloat(vals[cols[xi]], 64); err != nil {
			return nil, fmt.Errorf("bad x value %q", vals[cols[xi]])
		}
		if p.Y, err = strconv.ParseFloat(vals[cols[yi]], 64); err != nil {
			return nil, fmt.Errorf("bad y value %q", vals[cols[yi]])
		}
		if p.Z, err = strconv.ParseFloat(vals[cols[zi]], 64); err != nil {
			return nil, fmt.Errorf("bad z value %q", vals[cols[zi]])
		}
		cloud = append(cloud, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading PCD records: %w", err)
	}
	if len(cloud) < h.points {
		return nil, fmt.Errorf("PCD declares %d points, found %d", h.points, len(cloud))
	}
	return cloud, nil
}

func readPCDBinary(br *bufio.Reader, h pcdHeader, xi, yi, zi int) (PointCloud, error) {
	offsets := make([]int, len(h.fields))
	stride := 0
	for i, f := range h.fields {
		offsets[i] = stride
		stride += f.size * f.count
	}
	for _, i := range []int{xi, yi, zi} {
		f := h.fields[i]
		if f.typ != 'F' || (f.size != 4 && f.size != 8) {
			return nil, fmt.Errorf("field %q is not a 4- or 8-byte float", f.name)
		}
	}

	record := make([]byte, stride)
	cloud := make(PointCloud, 0, h.points)
	for n := 0; n < h.points; n++ {
		if _, err := io.ReadFull(br, record); err != nil {
			return nil, fmt.Errorf("reading binary PCD record %d: %w", n, err)
		}
		cloud = append(cloud, Point3{
			X: readPCDFloat(record[offsets[xi]:], h.fields[xi].size),
			Y: readPCDFloat(record[offsets[yi]:], h.fields[yi].size),
			Z: readPCDFloat(record[offsets[zi]:], h.fields[zi].size),
		})
	}
	return cloud, nil
}

func readPCDFloat(b []byte, size int) float64 {
	if size == 8 {
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

// WritePCD emits the cloud as a PCD v0.7 stream with x y z float32 fields.
func WritePCD(w io.Writer, cloud PointCloud, binaryData bool) error {
	format := "ascii"
	if binaryData {
		format = "binary"
	}
	header := fmt.Sprintf(`# .PCD v0.7 - Point Cloud Data file format
VERSION 0.7
FIELDS x y z
SIZE 4 4 4
TYPE F F F
COUNT 1 1 1
WIDTH %d
HEIGHT 1
VIEWPOINT 0 0 0 1 0 0 0
POINTS %d
DATA %s
`, len(cloud), len(cloud), format)
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("writing PCD header: %w", err)
	}

	if binaryData {
		record := make([]byte, 12)
		for _, p := range cloud {
			binary.LittleEndian.PutUint32(record[0:], math.Float32bits(float32(p.X)))
			binary.LittleEndian.PutUint32(record[4:], math.Float32bits(float32(p.Y)))
			binary.LittleEndian.PutUint32(record[8:], math.Float32bits(float32(p.Z)))
			if _, err := w.Write(record); err != nil {
				return fmt.Errorf("writing PCD record: %w", err)
			}
		}
		return nil
	}

	for _, p := range cloud {
		if _, err := fmt.Fprintf(w, "%g %g %g\n", float32(p.X), float32(p.Y), float32(p.Z)); err != nil {
			return fmt.Errorf("writing PCD record: %w", err)
		}
	}
	return nil
}
