package loom

import "testing"

type benchLeaf struct{}

type benchMid struct {
	Leaf *benchLeaf `inject:""`
}

type benchRoot struct {
	Mid  *benchMid  `inject:""`
	Leaf *benchLeaf `inject:""`
}

func newBenchProvider(b *testing.B, lt Lifetime) *Provider {
	b.Helper()

	r := NewRegistry()
	for _, err := range []error{
		r.Register(KeyOf[*benchLeaf](), lt, Struct[*benchLeaf]()),
		r.Register(KeyOf[*benchMid](), lt, Struct[*benchMid]()),
		r.Register(KeyOf[*benchRoot](), lt, Struct[*benchRoot]()),
	} {
		if err != nil {
			b.Fatalf("register: %v", err)
		}
	}
	return r.BuildProvider()
}

func BenchmarkResolve_SingletonWarm(b *testing.B) {
	p := newBenchProvider(b, Singleton)
	if _, err := Get[*benchRoot](p); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Get[*benchRoot](p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolve_Transient(b *testing.B) {
	p := newBenchProvider(b, Transient)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Get[*benchRoot](p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkResolve_ScopedWithinScope(b *testing.B) {
	p := newBenchProvider(b, Scoped)
	s := p.CreateScope()
	defer s.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := GetScoped[*benchRoot](s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPlanCompilation(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p := newBenchProvider(b, Transient)
		if _, err := Get[*benchRoot](p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRegister(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := NewRegistry()
		_ = AddTransient[*benchLeaf](r)
		_ = AddTransient[*benchMid](r)
		_ = AddTransient[*benchRoot](r)
	}
}
