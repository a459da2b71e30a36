package syscallgate

import (
	"corvus/defs"
	"corvus/naming"
	"corvus/sched"
)

func registerNamingSyscalls(g *Gate, d Deps) {
	g.Register(Open, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		path, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		opts := defs.OpenOptions(args.A1)
		resolved := resolvePath(proc, path)

		n, lookupErr := naming.Lookup(proc.Root, resolved)
		if lookupErr != 0 {
			if lookupErr != defs.ENOENT || opts&defs.O_CREATE == 0 {
				return 0, lookupErr
			}
			if err := naming.Touch(proc.Root, resolved); err != 0 {
				return 0, err
			}
			n, lookupErr = naming.Lookup(proc.Root, resolved)
			if lookupErr != 0 {
				return 0, lookupErr
			}
		}
		fd, err := proc.Files.Open(n, opts)
		if err != 0 {
			return 0, err
		}
		return int64(fd), 0
	})

	g.Register(Close, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		return 0, proc.Files.Close(defs.Fd_t(args.A0))
	})

	g.Register(Read, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		oo, err := proc.Files.Get(defs.Fd_t(args.A0))
		if err != 0 {
			return 0, err
		}
		n := int(args.A2)
		if n < 0 || n > MaxUserStringLen*16 {
			return 0, defs.EINVAL
		}
		buf := make([]uint8, n)
		read, rerr := oo.Read(buf)
		if rerr != 0 {
			return 0, rerr
		}
		if cerr := CopyToUser(proc.Space, args.A1, buf[:read]); cerr != 0 {
			return 0, cerr
		}
		return int64(read), 0
	})

	g.Register(Write, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		oo, err := proc.Files.Get(defs.Fd_t(args.A0))
		if err != 0 {
			return 0, err
		}
		n := int(args.A2)
		if n < 0 || n > MaxUserStringLen*16 {
			return 0, defs.EINVAL
		}
		buf := make([]uint8, n)
		if cerr := CopyFromUser(proc.Space, args.A1, buf); cerr != 0 {
			return 0, cerr
		}
		written, werr := oo.Write(buf)
		if werr != 0 {
			return int64(written), werr
		}
		return int64(written), 0
	})

	g.Register(Seek, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		oo, err := proc.Files.Get(defs.Fd_t(args.A0))
		if err != 0 {
			return 0, err
		}
		pos, serr := oo.Seek(int64(args.A1), defs.SeekOrigin(args.A2))
		return pos, serr
	})

	g.Register(Readdir, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		path, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		dir, derr := naming.LookupDir(proc.Root, resolvePath(proc, path))
		if derr != 0 {
			return 0, derr
		}
		var joined []uint8
		for _, name := range dir.Readdir() {
			joined = append(joined, name...)
			joined = append(joined, '\n')
		}
		if int(args.A2) < len(joined) {
			return 0, defs.EINVAL
		}
		if cerr := CopyToUser(proc.Space, args.A1, joined); cerr != 0 {
			return 0, cerr
		}
		return int64(len(joined)), 0
	})

	g.Register(Mkdir, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		path, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		return 0, naming.Mkdir(proc.Root, resolvePath(proc, path))
	})

	g.Register(Touch, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		path, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		return 0, naming.Touch(proc.Root, resolvePath(proc, path))
	})

	g.Register(Mkentry, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		// Mkentry creates the one Named kind that neither Mkdir nor
		// Touch can: a pipe, the "anonymous byte-queue entry" original
		// bring-up tables group next to directories and files.
		path, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		return 0, naming.Mkfifo(proc.Root, resolvePath(proc, path))
	})

	g.Register(Cwd, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		cwd := proc.GetCwd().String()
		if int(args.A1) < len(cwd) {
			return 0, defs.ENAMETOOLONG
		}
		if cerr := CopyToUser(proc.Space, args.A0, []uint8(cwd)); cerr != 0 {
			return 0, cerr
		}
		return int64(len(cwd)), 0
	})

	g.Register(Cd, func(proc *sched.Process, th *sched.Thread, args Args) (int64, defs.Err_t) {
		path, err := ReadUserString(proc.Space, args.A0)
		if err != 0 {
			return 0, err
		}
		resolved := resolvePath(proc, path)
		if _, derr := naming.LookupDir(proc.Root, resolved); derr != 0 {
			return 0, derr
		}
		proc.SetCwd(resolved)
		return 0, 0
	})
}
